package dto

import (
	"github.com/google/uuid"

	"hifzku_backend/internals/features/programs/attendances/model"
	"hifzku_backend/internals/features/programs/attendances/service"
)

type RecordAttendanceRequest struct {
	StudentID     uuid.UUID `json:"student_id" validate:"required"`
	Status        string    `json:"status" validate:"required,oneof=present absent excused"`
	HizbID        *int      `json:"hizb_id" validate:"omitempty,min=1,max=60"`
	ThomanID      *int      `json:"thoman_id" validate:"omitempty,min=1,max=480"`
	ExcusedReason *string   `json:"excused_reason" validate:"omitempty,max=500"`
}

func (r *RecordAttendanceRequest) ToInput() service.RecordInput {
	return service.RecordInput{
		Status:        model.AttendanceStatus(r.Status),
		HizbID:        r.HizbID,
		ThomanID:      r.ThomanID,
		ExcusedReason: r.ExcusedReason,
	}
}
