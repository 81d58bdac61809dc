// file: internals/helpers/auth/actor.go
package helper

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hifzku_backend/internals/constants"
)

// key Locals yang diisi middleware AuthJWT
const (
	LocActor  = "actor"
	LocUserID = "user_id"
	LocRole   = "role"
)

var (
	ErrNoActor      = errors.New("unauthorized")
	ErrClubNotOwned = errors.New("club is not assigned to the current user")
)

// Actor = pengguna yang sedang login (diambil dari klaim JWT).
type Actor struct {
	UserID  uuid.UUID   `json:"user_id"`
	Name    string      `json:"user_name,omitempty"`
	Role    string      `json:"role"`
	ClubIDs []uuid.UUID `json:"club_ids"`
}

func (a *Actor) IsAdmin() bool { return strings.EqualFold(a.Role, constants.RoleAdmin) }

// CanAccessClub: admin bebas; selain admin hanya klub yang ditugaskan.
func (a *Actor) CanAccessClub(clubID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	for _, id := range a.ClubIDs {
		if id == clubID {
			return true
		}
	}
	return false
}

// GetActor membaca Actor dari Locals.
func GetActor(c *fiber.Ctx) (*Actor, error) {
	a, ok := c.Locals(LocActor).(*Actor)
	if !ok || a == nil || a.UserID == uuid.Nil {
		return nil, ErrNoActor
	}
	return a, nil
}

// ActorID: nil bila tidak ada actor (dipakai untuk jejak audit).
func ActorID(c *fiber.Ctx) *uuid.UUID {
	a, err := GetActor(c)
	if err != nil {
		return nil
	}
	id := a.UserID
	return &id
}

// EnsureClubAccess: 401 tanpa actor, 403 bila klub bukan milik actor.
func EnsureClubAccess(c *fiber.Ctx, clubID uuid.UUID) error {
	a, err := GetActor(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	if !a.CanAccessClub(clubID) {
		return fiber.NewError(fiber.StatusForbidden, ErrClubNotOwned.Error())
	}
	return nil
}

// EnsureAdmin: hanya role admin.
func EnsureAdmin(c *fiber.Ctx) error {
	a, err := GetActor(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	if !a.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorAdmin("ini"))
	}
	return nil
}
