package dto

import (
	"strings"

	"github.com/google/uuid"

	"hifzku_backend/internals/features/clubs/clubs/model"
)

type CreateClubRequest struct {
	ClubName     string  `json:"club_name" validate:"required,min=2,max=120"`
	ClubLocation *string `json:"club_location" validate:"omitempty,max=200"`
	ClubIsActive *bool   `json:"club_is_active"`
}

func (r *CreateClubRequest) ToModel() model.ClubModel {
	m := model.ClubModel{
		ClubName:     strings.TrimSpace(r.ClubName),
		ClubLocation: trimPtr(r.ClubLocation),
		ClubIsActive: true,
	}
	if r.ClubIsActive != nil {
		m.ClubIsActive = *r.ClubIsActive
	}
	return m
}

// UpdateClubRequest: PATCH, field nil = tidak diubah.
type UpdateClubRequest struct {
	ClubName     *string `json:"club_name" validate:"omitempty,min=2,max=120"`
	ClubLocation *string `json:"club_location" validate:"omitempty,max=200"`
	ClubIsActive *bool   `json:"club_is_active"`
}

func (r *UpdateClubRequest) ToUpdates() map[string]any {
	up := map[string]any{}
	if r.ClubName != nil {
		up["club_name"] = strings.TrimSpace(*r.ClubName)
	}
	if r.ClubLocation != nil {
		up["club_location"] = trimPtr(r.ClubLocation)
	}
	if r.ClubIsActive != nil {
		up["club_is_active"] = *r.ClubIsActive
	}
	return up
}

// AssignUsersRequest: ganti seluruh daftar supervisor klub.
type AssignUsersRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" validate:"dive,required"`
}

type ClubResponse struct {
	model.ClubModel
	StudentsCount int64 `json:"students_count"`
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
