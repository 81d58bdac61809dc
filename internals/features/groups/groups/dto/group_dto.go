package dto

import (
	"github.com/google/uuid"

	"hifzku_backend/internals/features/groups/groups/model"
)

// CreateGroupRequest: student_ids hanya dipakai untuk fauj berikutnya (bukan pembagian pertama).
type CreateGroupRequest struct {
	ClubID     uuid.UUID   `json:"club_id" validate:"required"`
	CategoryID uuid.UUID   `json:"category_id" validate:"required"`
	StudentIDs []uuid.UUID `json:"student_ids" validate:"omitempty,max=500,dive,required"`
	Name       *string     `json:"name" validate:"omitempty,min=1,max=60"`
}

type RenameGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=60"`
}

type MergeGroupsRequest struct {
	SourceGroupID uuid.UUID `json:"source_group_id" validate:"required"`
	TargetGroupID uuid.UUID `json:"target_group_id" validate:"required"`
}

// TransferStudentRequest: group_id null = tanpa fauj (hanya sah bila scope tanpa fauj aktif).
type TransferStudentRequest struct {
	StudentID uuid.UUID  `json:"student_id" validate:"required"`
	GroupID   *uuid.UUID `json:"group_id"`
}

type BulkTransferRequest struct {
	StudentIDs []uuid.UUID `json:"student_ids" validate:"required,min=1,max=500,dive,required"`
	GroupID    *uuid.UUID  `json:"group_id"`
}

type GroupResponse struct {
	model.GroupModel
	StudentsCount int64 `json:"students_count"`
}

type CreateGroupResponse struct {
	FirstGroups bool               `json:"first_groups"`
	Groups      []model.GroupModel `json:"groups"`
	Assigned    int                `json:"assigned"`
}
