package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/clubs/categories/controller"
)

func CategoryAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewCategoryController(db)

	g := admin.Group("/categories")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
}
