package dto

import (
	"strings"

	uModel "hifzku_backend/internals/features/users/user/model"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// CreateUserRequest: staff baru oleh admin (password di-hash di controller)
type CreateUserRequest struct {
	UserName string `json:"user_name" validate:"required,min=3,max=80"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin supervisor teacher"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (r *CreateUserRequest) Normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Role = strings.TrimSpace(r.Role)
}

func (r *CreateUserRequest) ToModel(passwordHash string) *uModel.UserModel {
	u := &uModel.UserModel{
		UserName:     r.UserName,
		UserEmail:    r.Email,
		UserPassword: passwordHash,
		UserRole:     r.Role,
		UserIsActive: true,
	}
	if r.IsActive != nil {
		u.UserIsActive = *r.IsActive
	}
	return u
}

// UpdateUserRequest: PATCH; nil = tidak diubah
type UpdateUserRequest struct {
	UserName *string `json:"user_name" validate:"omitempty,min=3,max=80"`
	Email    *string `json:"email" validate:"omitempty,email,max=160"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin supervisor teacher"`
	IsActive *bool   `json:"is_active"`
}

// ToUpdates: passwordHash kosong = password tidak diubah
func (r *UpdateUserRequest) ToUpdates(passwordHash string) map[string]any {
	up := map[string]any{}
	if r.UserName != nil {
		up["user_name"] = strings.TrimSpace(*r.UserName)
	}
	if r.Email != nil {
		up["user_email"] = strings.TrimSpace(strings.ToLower(*r.Email))
	}
	if passwordHash != "" {
		up["user_password"] = passwordHash
	}
	if r.Role != nil {
		up["user_role"] = *r.Role
	}
	if r.IsActive != nil {
		up["user_is_active"] = *r.IsActive
	}
	return up
}
