package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/programs/programs/controller"
	activityService "hifzku_backend/internals/features/users/activity/service"
)

func ProgramAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewProgramController(db, activityService.NewGormSink(db))

	programs := admin.Group("/programs")
	programs.Get("/", ctl.List)
	programs.Post("/", ctl.Create)
	programs.Post("/preview", ctl.Preview)
	programs.Get("/:id", ctl.Detail)
	programs.Patch("/:id", ctl.Patch)
	programs.Delete("/:id", ctl.Delete)
	programs.Get("/:id/sessions", ctl.Sessions)
	programs.Post("/:id/regenerate", ctl.Regenerate)
}
