package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	programRoute "hifzku_backend/internals/features/programs/programs/route"
	sessionRoute "hifzku_backend/internals/features/programs/sessions/route"
)

// ProgramAdminRoutes: program, sesi, absensi.
func ProgramAdminRoutes(admin fiber.Router, db *gorm.DB) {
	programRoute.ProgramAdminRoutes(admin, db)
	sessionRoute.SessionAdminRoutes(admin, db)
}
