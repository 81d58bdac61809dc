// file: internals/middlewares/auth/jwt_auth.go
package auth

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hifzku_backend/internals/constants"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret              string
	BlacklistChecker    func(ctx context.Context, rawToken string) (bool, error) // true = sudah logout
	AllowCookieFallback bool                                                     // pakai cookie access_token jika tidak ada Bearer
}

// AuthJWT: verifikasi access token lalu simpan Actor ke Locals.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		if o.BlacklistChecker != nil {
			black, err := o.BlacklistChecker(c.UserContext(), raw)
			if err != nil {
				log.Printf("[AUTH] blacklist check: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
			}
			if black {
				return fiber.NewError(fiber.StatusUnauthorized, "Token revoked")
			}
		}

		actor, _, err := helperAuth.ParseAccessToken(raw, secret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		c.Locals(helperAuth.LocActor, actor)
		c.Locals(helperAuth.LocUserID, actor.UserID.String())
		c.Locals(helperAuth.LocRole, actor.Role)
		return c.Next()
	}
}

// RequireRoles: tolak actor yang role-nya tidak ada di allowed.
func RequireRoles(allowed []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := helperAuth.GetActor(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		if !constants.HasRole(a.Role, allowed) {
			return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorStaff("ini"))
		}
		return c.Next()
	}
}
