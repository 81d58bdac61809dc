package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userRoute "hifzku_backend/internals/features/users/user/route"
)

// UserAdminRoutes: manajemen akun staff (admin saja, dicek di route fitur).
func UserAdminRoutes(admin fiber.Router, db *gorm.DB) {
	userRoute.UserAdminRoutes(admin, db)
}
