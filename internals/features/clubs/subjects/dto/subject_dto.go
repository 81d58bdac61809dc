package dto

import (
	"strings"

	"hifzku_backend/internals/features/clubs/subjects/model"
)

type CreateSubjectRequest struct {
	SubjectName        string  `json:"subject_name" validate:"required,min=2,max=120"`
	SubjectDescription *string `json:"subject_description" validate:"omitempty,max=2000"`
}

func (r *CreateSubjectRequest) ToModel() model.SubjectModel {
	m := model.SubjectModel{SubjectName: strings.TrimSpace(r.SubjectName)}
	if r.SubjectDescription != nil {
		if d := strings.TrimSpace(*r.SubjectDescription); d != "" {
			m.SubjectDescription = &d
		}
	}
	return m
}
