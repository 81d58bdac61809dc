package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/clubs/subjects/controller"
)

func SubjectAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewSubjectController(db)

	g := admin.Group("/subjects")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
}
