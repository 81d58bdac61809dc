package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hifzku_backend/internals/constants"
)

// UserModel merepresentasikan tabel users di database
type UserModel struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	UserName     string    `gorm:"column:user_name;type:varchar(80);not null" json:"user_name"`
	UserEmail    string    `gorm:"column:user_email;type:varchar(160);not null" json:"user_email"`
	UserPassword string    `gorm:"column:user_password;type:text;not null" json:"-"`
	UserRole     string    `gorm:"column:user_role;type:varchar(20);not null;default:'supervisor'" json:"user_role"`
	UserIsActive bool      `gorm:"column:user_is_active;not null;default:true" json:"user_is_active"`

	UserCreatedAt time.Time      `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt time.Time      `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at"`
	UserDeletedAt gorm.DeletedAt `gorm:"column:user_deleted_at;index" json:"-"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	u.UserEmail = strings.ToLower(strings.TrimSpace(u.UserEmail))
	if u.UserRole == "" {
		u.UserRole = constants.RoleSupervisor
	}
	return nil
}

func (u *UserModel) IsAdmin() bool { return u.UserRole == constants.RoleAdmin }
