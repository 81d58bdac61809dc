package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hifzku_backend/internals/helpers/dbtime"
)

// ProgramModel: template jadwal berulang (materi + hari + rentang tanggal).
// ProgramGroupID nil = berlaku untuk seluruh siswa kategori.
type ProgramModel struct {
	ProgramID         uuid.UUID  `gorm:"column:program_id;type:uuid;primaryKey" json:"program_id"`
	ProgramClubID     uuid.UUID  `gorm:"column:program_club_id;type:uuid;not null;index" json:"program_club_id"`
	ProgramCategoryID uuid.UUID  `gorm:"column:program_category_id;type:uuid;not null" json:"program_category_id"`
	ProgramGroupID    *uuid.UUID `gorm:"column:program_group_id;type:uuid;index" json:"program_group_id"`
	ProgramSubjectID  uuid.UUID  `gorm:"column:program_subject_id;type:uuid;not null" json:"program_subject_id"`

	ProgramDaysOfWeek        WeekdaySet  `gorm:"column:program_days_of_week;not null" json:"program_days_of_week"`
	ProgramStartDate         time.Time   `gorm:"column:program_start_date;type:date;not null" json:"program_start_date"`
	ProgramEndDate           time.Time   `gorm:"column:program_end_date;type:date;not null" json:"program_end_date"`
	ProgramDefaultStartTime  *dbtime.Tod `gorm:"column:program_default_start_time" json:"program_default_start_time"`
	ProgramDefaultEndTime    *dbtime.Tod `gorm:"column:program_default_end_time" json:"program_default_end_time"`
	ProgramIsActive          bool        `gorm:"column:program_is_active;not null;default:true" json:"program_is_active"`

	ProgramCreatedAt time.Time      `gorm:"column:program_created_at;autoCreateTime" json:"program_created_at"`
	ProgramUpdatedAt time.Time      `gorm:"column:program_updated_at;autoUpdateTime" json:"program_updated_at"`
	ProgramDeletedAt gorm.DeletedAt `gorm:"column:program_deleted_at;index" json:"program_deleted_at,omitempty"`
}

func (ProgramModel) TableName() string { return "programs" }

func (m *ProgramModel) BeforeCreate(tx *gorm.DB) error {
	if m.ProgramID == uuid.Nil {
		m.ProgramID = uuid.New()
	}
	return nil
}
