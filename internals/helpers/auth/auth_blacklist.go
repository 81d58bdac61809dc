package helper

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "hifzku_backend/internals/features/users/auth/model"
)

func hmacHex(msg, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

// GetRawAccessToken: Authorization: Bearer ... atau cookie access_token
func GetRawAccessToken(c *fiber.Ctx) string {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Cookies("access_token"))
}

// Blacklist: simpan HMAC(access_token) sampai expiresAt. Idempotent.
func Blacklist(ctx context.Context, db *gorm.DB, rawAccessToken, jwtSecret string, expiresAt time.Time) error {
	if db == nil || strings.TrimSpace(rawAccessToken) == "" || strings.TrimSpace(jwtSecret) == "" {
		return nil
	}
	row := authModel.TokenBlacklist{
		Token:     hmacHex(rawAccessToken, jwtSecret),
		ExpiredAt: expiresAt.UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.Assignments(map[string]any{"expired_at": row.ExpiredAt, "deleted_at": nil}),
		}).
		Create(&row).Error
}

// IsBlacklisted: ada baris aktif dan belum expired?
func IsBlacklisted(ctx context.Context, db *gorm.DB, rawAccessToken, jwtSecret string) (bool, error) {
	if db == nil || strings.TrimSpace(rawAccessToken) == "" || strings.TrimSpace(jwtSecret) == "" {
		return false, nil
	}
	var n int64
	err := db.WithContext(ctx).
		Model(&authModel.TokenBlacklist{}).
		Where("token = ? AND expired_at > ?", hmacHex(rawAccessToken, jwtSecret), time.Now().UTC()).
		Count(&n).Error
	return n > 0, err
}

// PurgeExpired: hard delete baris yang expired sebelum cutoff.
func PurgeExpired(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, nil
	}
	res := db.WithContext(ctx).Unscoped().
		Where("expired_at < ?", cutoff.UTC()).
		Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}

// BlacklistChecker: adaptor untuk AuthJWTOpts.
func BlacklistChecker(db *gorm.DB, jwtSecret string) func(ctx context.Context, raw string) (bool, error) {
	return func(ctx context.Context, raw string) (bool, error) {
		return IsBlacklisted(ctx, db, raw, jwtSecret)
	}
}
