package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceModel: satu baris per (session, student).
// AttendanceGroupID = snapshot fauj siswa saat pertama kali dicatat; tidak pernah diubah lagi.
type AttendanceModel struct {
	AttendanceID        uuid.UUID  `gorm:"column:attendance_id;type:uuid;primaryKey" json:"attendance_id"`
	AttendanceSessionID uuid.UUID  `gorm:"column:attendance_session_id;type:uuid;not null;uniqueIndex:uq_attendances_session_student" json:"attendance_session_id"`
	AttendanceStudentID uuid.UUID  `gorm:"column:attendance_student_id;type:uuid;not null;uniqueIndex:uq_attendances_session_student" json:"attendance_student_id"`
	AttendanceGroupID   *uuid.UUID `gorm:"column:attendance_group_id;type:uuid;index" json:"attendance_group_id"`

	AttendanceStatus        AttendanceStatus `gorm:"column:attendance_status;type:varchar(10);not null" json:"attendance_status"`
	AttendanceHizbID        *int             `gorm:"column:attendance_hizb_id;type:smallint" json:"attendance_hizb_id,omitempty"`
	AttendanceThomanID      *int             `gorm:"column:attendance_thoman_id;type:smallint" json:"attendance_thoman_id,omitempty"`
	AttendanceExcusedReason *string          `gorm:"column:attendance_excused_reason;type:text" json:"attendance_excused_reason,omitempty"`

	AttendanceCreatedAt time.Time `gorm:"column:attendance_created_at;autoCreateTime" json:"attendance_created_at"`
	AttendanceUpdatedAt time.Time `gorm:"column:attendance_updated_at;autoUpdateTime" json:"attendance_updated_at"`
}

func (AttendanceModel) TableName() string { return "attendances" }

func (m *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceID == uuid.Nil {
		m.AttendanceID = uuid.New()
	}
	return nil
}
