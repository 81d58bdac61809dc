package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/students/students/controller"
	activityService "hifzku_backend/internals/features/users/activity/service"
)

func StudentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewStudentController(db, activityService.NewGormSink(db))

	students := admin.Group("/students")
	students.Get("/", ctl.List)
	students.Get("/:id", ctl.Detail)
	students.Post("/", ctl.Create)
	students.Patch("/:id", ctl.Patch)
	students.Delete("/:id", ctl.Delete)
}
