package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hifzku_backend/internals/helpers/dbtime"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// ProgramSessionModel: satu pertemuan bertanggal dari sebuah program.
// scheduled → completed | cancelled; keduanya final.
type ProgramSessionModel struct {
	ProgramSessionID           uuid.UUID     `gorm:"column:program_session_id;type:uuid;primaryKey" json:"program_session_id"`
	ProgramSessionProgramID    uuid.UUID     `gorm:"column:program_session_program_id;type:uuid;not null;index:idx_program_sessions_program_date" json:"program_session_program_id"`
	ProgramSessionDate         time.Time     `gorm:"column:program_session_date;type:date;not null;index:idx_program_sessions_program_date" json:"program_session_date"`
	ProgramSessionStartTime    *dbtime.Tod   `gorm:"column:program_session_start_time" json:"program_session_start_time"`
	ProgramSessionEndTime      *dbtime.Tod   `gorm:"column:program_session_end_time" json:"program_session_end_time"`
	ProgramSessionStatus       SessionStatus `gorm:"column:program_session_status;type:varchar(12);not null;default:'scheduled'" json:"program_session_status"`
	ProgramSessionCancelReason *string       `gorm:"column:program_session_cancel_reason;type:text" json:"program_session_cancel_reason,omitempty"`
	ProgramSessionCompletedAt  *time.Time    `gorm:"column:program_session_completed_at" json:"program_session_completed_at,omitempty"`
	ProgramSessionCancelledAt  *time.Time    `gorm:"column:program_session_cancelled_at" json:"program_session_cancelled_at,omitempty"`

	ProgramSessionCreatedAt time.Time `gorm:"column:program_session_created_at;autoCreateTime" json:"program_session_created_at"`
	ProgramSessionUpdatedAt time.Time `gorm:"column:program_session_updated_at;autoUpdateTime" json:"program_session_updated_at"`
}

func (ProgramSessionModel) TableName() string { return "program_sessions" }

func (m *ProgramSessionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ProgramSessionID == uuid.Nil {
		m.ProgramSessionID = uuid.New()
	}
	if m.ProgramSessionStatus == "" {
		m.ProgramSessionStatus = SessionScheduled
	}
	return nil
}

func (m *ProgramSessionModel) IsScheduled() bool { return m.ProgramSessionStatus == SessionScheduled }
