package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupModel = fauj: pembagian siswa dalam satu scope (club, category).
// Jumlah siswa tidak disimpan; selalu dihitung dari students.student_group_id.
type GroupModel struct {
	GroupID         uuid.UUID `gorm:"column:group_id;type:uuid;primaryKey" json:"group_id"`
	GroupClubID     uuid.UUID `gorm:"column:group_club_id;type:uuid;not null;index:idx_groups_scope" json:"group_club_id"`
	GroupCategoryID uuid.UUID `gorm:"column:group_category_id;type:uuid;not null;index:idx_groups_scope" json:"group_category_id"`
	GroupName       string    `gorm:"column:group_name;type:varchar(60);not null" json:"group_name"`
	GroupOrder      int       `gorm:"column:group_order;not null;default:0" json:"group_order"`
	GroupIsActive   bool      `gorm:"column:group_is_active;not null;default:true" json:"group_is_active"`

	GroupCreatedAt time.Time      `gorm:"column:group_created_at;autoCreateTime" json:"group_created_at"`
	GroupUpdatedAt time.Time      `gorm:"column:group_updated_at;autoUpdateTime" json:"group_updated_at"`
	GroupDeletedAt gorm.DeletedAt `gorm:"column:group_deleted_at;index" json:"group_deleted_at,omitempty"`
}

func (GroupModel) TableName() string { return "club_groups" }

func (m *GroupModel) BeforeCreate(tx *gorm.DB) error {
	if m.GroupID == uuid.Nil {
		m.GroupID = uuid.New()
	}
	return nil
}

func (m *GroupModel) SameScope(o *GroupModel) bool {
	return m.GroupClubID == o.GroupClubID && m.GroupCategoryID == o.GroupCategoryID
}
