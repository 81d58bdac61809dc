package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"hifzku_backend/internals/features/students/students/model"
)

const dateLayout = "2006-01-02"

// CreateStudentRequest: group_id opsional; tanpa group_id siswa ditempatkan otomatis.
type CreateStudentRequest struct {
	StudentClubID        uuid.UUID  `json:"student_club_id" validate:"required"`
	StudentCategoryID    uuid.UUID  `json:"student_category_id" validate:"required"`
	StudentGroupID       *uuid.UUID `json:"student_group_id"`
	StudentFirstName     string     `json:"student_first_name" validate:"required,max=80"`
	StudentLastName      string     `json:"student_last_name" validate:"required,max=80"`
	StudentGender        *string    `json:"student_gender" validate:"omitempty,oneof=male female"`
	StudentBirthDate     *string    `json:"student_birth_date" validate:"omitempty,datetime=2006-01-02"`
	StudentPhone         *string    `json:"student_phone" validate:"omitempty,max=30"`
	StudentGuardianName  *string    `json:"student_guardian_name" validate:"omitempty,max=120"`
	StudentGuardianPhone *string    `json:"student_guardian_phone" validate:"omitempty,max=30"`
	StudentEnrolledAt    *string    `json:"student_enrolled_at" validate:"omitempty,datetime=2006-01-02"`
}

// ToModel dipanggil setelah Validate, jadi format tanggal sudah pasti benar.
func (r *CreateStudentRequest) ToModel() model.StudentModel {
	m := model.StudentModel{
		StudentClubID:        r.StudentClubID,
		StudentCategoryID:    r.StudentCategoryID,
		StudentGroupID:       r.StudentGroupID,
		StudentFirstName:     strings.TrimSpace(r.StudentFirstName),
		StudentLastName:      strings.TrimSpace(r.StudentLastName),
		StudentGender:        trimPtr(r.StudentGender),
		StudentBirthDate:     parseDate(r.StudentBirthDate),
		StudentPhone:         trimPtr(r.StudentPhone),
		StudentGuardianName:  trimPtr(r.StudentGuardianName),
		StudentGuardianPhone: trimPtr(r.StudentGuardianPhone),
		StudentIsActive:      true,
	}
	if d := parseDate(r.StudentEnrolledAt); d != nil {
		m.StudentEnrolledAt = *d
	}
	return m
}

// UpdateStudentRequest: profil saja. Pindah fauj lewat /groups/transfer-student.
type UpdateStudentRequest struct {
	StudentFirstName     *string `json:"student_first_name" validate:"omitempty,min=1,max=80"`
	StudentLastName      *string `json:"student_last_name" validate:"omitempty,min=1,max=80"`
	StudentGender        *string `json:"student_gender" validate:"omitempty,oneof=male female"`
	StudentBirthDate     *string `json:"student_birth_date" validate:"omitempty,datetime=2006-01-02"`
	StudentPhone         *string `json:"student_phone" validate:"omitempty,max=30"`
	StudentGuardianName  *string `json:"student_guardian_name" validate:"omitempty,max=120"`
	StudentGuardianPhone *string `json:"student_guardian_phone" validate:"omitempty,max=30"`
	StudentIsActive      *bool   `json:"student_is_active"`
}

func (r *UpdateStudentRequest) ToUpdates() map[string]any {
	up := map[string]any{}
	if r.StudentFirstName != nil {
		up["student_first_name"] = strings.TrimSpace(*r.StudentFirstName)
	}
	if r.StudentLastName != nil {
		up["student_last_name"] = strings.TrimSpace(*r.StudentLastName)
	}
	if r.StudentGender != nil {
		up["student_gender"] = trimPtr(r.StudentGender)
	}
	if r.StudentBirthDate != nil {
		up["student_birth_date"] = parseDate(r.StudentBirthDate)
	}
	if r.StudentPhone != nil {
		up["student_phone"] = trimPtr(r.StudentPhone)
	}
	if r.StudentGuardianName != nil {
		up["student_guardian_name"] = trimPtr(r.StudentGuardianName)
	}
	if r.StudentGuardianPhone != nil {
		up["student_guardian_phone"] = trimPtr(r.StudentGuardianPhone)
	}
	if r.StudentIsActive != nil {
		up["student_is_active"] = *r.StudentIsActive
	}
	return up
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func parseDate(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &t
}
