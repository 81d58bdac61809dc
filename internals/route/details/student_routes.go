package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	groupRoute "hifzku_backend/internals/features/groups/groups/route"
	studentRoute "hifzku_backend/internals/features/students/students/route"
)

// StudentAdminRoutes: siswa + fauj (penempatan, transfer, merge).
func StudentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	studentRoute.StudentAdminRoutes(admin, db)
	groupRoute.GroupAdminRoutes(admin, db)
}
