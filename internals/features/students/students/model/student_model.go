package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentModel: StudentGroupID nil = belum masuk fauj (hanya sah jika scope tidak punya fauj aktif).
type StudentModel struct {
	StudentID         uuid.UUID  `gorm:"column:student_id;type:uuid;primaryKey" json:"student_id"`
	StudentClubID     uuid.UUID  `gorm:"column:student_club_id;type:uuid;not null;index:idx_students_scope" json:"student_club_id"`
	StudentCategoryID uuid.UUID  `gorm:"column:student_category_id;type:uuid;not null;index:idx_students_scope" json:"student_category_id"`
	StudentGroupID    *uuid.UUID `gorm:"column:student_group_id;type:uuid;index" json:"student_group_id"`

	StudentFirstName     string     `gorm:"column:student_first_name;type:varchar(80);not null" json:"student_first_name"`
	StudentLastName      string     `gorm:"column:student_last_name;type:varchar(80);not null" json:"student_last_name"`
	StudentGender        *string    `gorm:"column:student_gender;type:varchar(10)" json:"student_gender,omitempty"`
	StudentBirthDate     *time.Time `gorm:"column:student_birth_date;type:date" json:"student_birth_date,omitempty"`
	StudentPhone         *string    `gorm:"column:student_phone;type:varchar(30)" json:"student_phone,omitempty"`
	StudentGuardianName  *string    `gorm:"column:student_guardian_name;type:varchar(120)" json:"student_guardian_name,omitempty"`
	StudentGuardianPhone *string    `gorm:"column:student_guardian_phone;type:varchar(30)" json:"student_guardian_phone,omitempty"`
	StudentEnrolledAt    time.Time  `gorm:"column:student_enrolled_at;type:date;not null" json:"student_enrolled_at"`
	StudentIsActive      bool       `gorm:"column:student_is_active;not null;default:true" json:"student_is_active"`

	StudentCreatedAt time.Time      `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt time.Time      `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index" json:"student_deleted_at,omitempty"`
}

func (StudentModel) TableName() string { return "students" }

func (m *StudentModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentID == uuid.Nil {
		m.StudentID = uuid.New()
	}
	if m.StudentEnrolledAt.IsZero() {
		now := time.Now().UTC()
		m.StudentEnrolledAt = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return nil
}

func (m *StudentModel) FullName() string {
	return m.StudentFirstName + " " + m.StudentLastName
}
