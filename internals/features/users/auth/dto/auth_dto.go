package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}
