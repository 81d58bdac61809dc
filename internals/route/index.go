package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/configs"
	"hifzku_backend/internals/constants"
	authService "hifzku_backend/internals/features/users/auth/service"
	authMiddleware "hifzku_backend/internals/middlewares/auth"
	routeDetails "hifzku_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	// ===================== ADMIN (staff) =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	auth := authService.New(db)
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			BlacklistChecker:    auth.IsBlacklisted,
			AllowCookieFallback: true,
		}),
		authMiddleware.RequireRoles(constants.StaffRoles),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Club routes...")
	routeDetails.ClubAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Student & Group routes...")
	routeDetails.StudentAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Program routes...")
	routeDetails.ProgramAdminRoutes(admin, db)

	log.Println("[INFO] Mounting User routes...")
	routeDetails.UserAdminRoutes(admin, db)
}
