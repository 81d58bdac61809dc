package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryGender string

const (
	GenderMale   CategoryGender = "male"
	GenderFemale CategoryGender = "female"
	GenderMixed  CategoryGender = "mixed"
)

// CategoryModel: kelompok usia/gender; (club, category) = scope fauj.
type CategoryModel struct {
	CategoryID          uuid.UUID      `gorm:"column:category_id;type:uuid;primaryKey" json:"category_id"`
	CategoryName        string         `gorm:"column:category_name;type:varchar(60);not null;uniqueIndex" json:"category_name"`
	CategoryDisplayName string         `gorm:"column:category_display_name;type:varchar(120);not null" json:"category_display_name"`
	CategoryGender      CategoryGender `gorm:"column:category_gender;type:varchar(10);not null;default:'mixed'" json:"category_gender"`

	CategoryCreatedAt time.Time `gorm:"column:category_created_at;autoCreateTime" json:"category_created_at"`
	CategoryUpdatedAt time.Time `gorm:"column:category_updated_at;autoUpdateTime" json:"category_updated_at"`
}

func (CategoryModel) TableName() string { return "categories" }

func (m *CategoryModel) BeforeCreate(tx *gorm.DB) error {
	if m.CategoryID == uuid.Nil {
		m.CategoryID = uuid.New()
	}
	if m.CategoryGender == "" {
		m.CategoryGender = GenderMixed
	}
	return nil
}
