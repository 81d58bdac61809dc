// file: internals/features/users/auth/service/auth_service.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hifzku_backend/internals/configs"
	authRepo "hifzku_backend/internals/features/users/auth/repository"
	userModel "hifzku_backend/internals/features/users/user/model"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

var (
	ErrInvalidCredentials = errors.New("email atau password salah")
	ErrUserInactive       = errors.New("akun Anda telah dinonaktifkan, hubungi admin")
	ErrUserNotFound       = errors.New("user not found")
)

func nowUTC() time.Time { return time.Now().UTC() }

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type LoginResult struct {
	AccessToken string              `json:"access_token"`
	ExpiresAt   time.Time           `json:"expires_at"`
	User        userModel.UserModel `json:"user"`
	Actor       helperAuth.Actor    `json:"actor"`
}

// Auth: Secret & TTL diambil dari configs bila kosong.
type Auth struct {
	DB     *gorm.DB
	Secret string
	TTL    time.Duration
}

func New(db *gorm.DB) *Auth {
	return &Auth{DB: db, Secret: configs.JWTSecret, TTL: configs.AccessTokenTTL}
}

func (a *Auth) ttl() time.Duration {
	if a.TTL <= 0 {
		return 12 * time.Hour
	}
	return a.TTL
}

// Login: cek bcrypt lalu terbitkan access token berisi sub, role, club_ids.
func (a *Auth) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := authRepo.FindUserByEmail(ctx, a.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "find user")
	}
	if err := CheckPasswordHash(user.UserPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.UserIsActive {
		return nil, ErrUserInactive
	}

	actor, err := a.actorOf(ctx, user)
	if err != nil {
		return nil, err
	}
	token, exp, err := helperAuth.SignAccessToken(*actor, a.Secret, nowUTC(), a.ttl())
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	log.Printf("[AUTH] login user=%s role=%s clubs=%d", user.UserID, user.UserRole, len(actor.ClubIDs))
	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: *user, Actor: *actor}, nil
}

func (a *Auth) actorOf(ctx context.Context, user *userModel.UserModel) (*helperAuth.Actor, error) {
	clubIDs, err := authRepo.ClubIDsOf(ctx, a.DB, user.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "load user clubs")
	}
	return &helperAuth.Actor{
		UserID:  user.UserID,
		Name:    user.UserName,
		Role:    user.UserRole,
		ClubIDs: clubIDs,
	}, nil
}

// Logout: blacklist access token sampai exp (+1 menit toleransi). Idempotent.
func (a *Auth) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	expires := nowUTC().Add(a.ttl())
	if _, exp, err := helperAuth.ParseAccessToken(rawToken, a.Secret); err == nil && !exp.IsZero() {
		expires = exp.Add(time.Minute)
	}
	return helperAuth.Blacklist(ctx, a.DB, rawToken, a.Secret, expires)
}

// Me: user + klub terbaru (bukan dari token, agar perubahan penugasan langsung terlihat).
func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (*userModel.UserModel, *helperAuth.Actor, error) {
	user, err := authRepo.FindUserByID(ctx, a.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, errors.Wrap(err, "find user")
	}
	actor, err := a.actorOf(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, actor, nil
}

func (a *Auth) IsBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	return helperAuth.IsBlacklisted(ctx, a.DB, rawToken, a.Secret)
}
