package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	categoryRoute "hifzku_backend/internals/features/clubs/categories/route"
	clubRoute "hifzku_backend/internals/features/clubs/clubs/route"
	subjectRoute "hifzku_backend/internals/features/clubs/subjects/route"
)

// ClubAdminRoutes: master data (klub, kategori, subject).
func ClubAdminRoutes(admin fiber.Router, db *gorm.DB) {
	clubRoute.ClubAdminRoutes(admin, db)
	categoryRoute.CategoryAdminRoutes(admin, db)
	subjectRoute.SubjectAdminRoutes(admin, db)
}
