// internals/features/users/auth/repository/auth_repository.go
package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	clubModel "hifzku_backend/internals/features/clubs/clubs/model"
	userModel "hifzku_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).
		Where("LOWER(user_email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

/* ====================== CLUBS ====================== */

// ClubIDsOf: klub yang ditugaskan ke user (pivot club_users).
func ClubIDsOf(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).
		Model(&clubModel.ClubUserModel{}).
		Where("club_user_user_id = ?", userID).
		Order("club_user_created_at ASC").
		Pluck("club_user_club_id", &ids).Error
	return ids, err
}
