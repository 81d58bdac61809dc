package dto

import (
	"strings"

	"hifzku_backend/internals/features/clubs/categories/model"
)

type CreateCategoryRequest struct {
	CategoryName        string  `json:"category_name" validate:"required,min=2,max=60"`
	CategoryDisplayName string  `json:"category_display_name" validate:"required,max=120"`
	CategoryGender      *string `json:"category_gender" validate:"omitempty,oneof=male female mixed"`
}

func (r *CreateCategoryRequest) ToModel() model.CategoryModel {
	m := model.CategoryModel{
		CategoryName:        strings.ToLower(strings.TrimSpace(r.CategoryName)),
		CategoryDisplayName: strings.TrimSpace(r.CategoryDisplayName),
		CategoryGender:      model.GenderMixed,
	}
	if r.CategoryGender != nil {
		m.CategoryGender = model.CategoryGender(*r.CategoryGender)
	}
	return m
}
