// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/configs"
	controller "hifzku_backend/internals/features/users/auth/controller"
	rateLimiter "hifzku_backend/internals/middlewares"
	authMiddleware "hifzku_backend/internals/middlewares/auth"
)

// AuthRoutes: /api/auth (login publik; logout & me butuh token).
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controller.NewAuthController(db)

	baseAuth := app.Group("/api/auth")
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)

	protected := baseAuth.Group("",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			BlacklistChecker:    authController.Auth.IsBlacklisted,
			AllowCookieFallback: true,
		}),
	)
	protected.Post("/logout", authController.Logout)
	protected.Get("/me", authController.Me)
}
