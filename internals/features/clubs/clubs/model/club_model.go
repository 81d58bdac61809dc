package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClubModel struct {
	ClubID       uuid.UUID `gorm:"column:club_id;type:uuid;primaryKey" json:"club_id"`
	ClubName     string    `gorm:"column:club_name;type:varchar(120);not null" json:"club_name"`
	ClubLocation *string   `gorm:"column:club_location;type:varchar(200)" json:"club_location,omitempty"`
	ClubIsActive bool      `gorm:"column:club_is_active;not null;default:true" json:"club_is_active"`

	ClubCreatedAt time.Time      `gorm:"column:club_created_at;autoCreateTime" json:"club_created_at"`
	ClubUpdatedAt time.Time      `gorm:"column:club_updated_at;autoUpdateTime" json:"club_updated_at"`
	ClubDeletedAt gorm.DeletedAt `gorm:"column:club_deleted_at;index" json:"club_deleted_at,omitempty"`
}

func (ClubModel) TableName() string { return "clubs" }

func (m *ClubModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClubID == uuid.Nil {
		m.ClubID = uuid.New()
	}
	return nil
}

// ClubUserModel: pivot users <-> clubs (supervisor yang memegang klub).
type ClubUserModel struct {
	ClubUserClubID    uuid.UUID `gorm:"column:club_user_club_id;type:uuid;primaryKey" json:"club_id"`
	ClubUserUserID    uuid.UUID `gorm:"column:club_user_user_id;type:uuid;primaryKey" json:"user_id"`
	ClubUserCreatedAt time.Time `gorm:"column:club_user_created_at;autoCreateTime" json:"created_at"`
}

func (ClubUserModel) TableName() string { return "club_users" }
