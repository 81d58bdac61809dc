package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/clubs/clubs/controller"
	activityService "hifzku_backend/internals/features/users/activity/service"
)

func ClubAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewClubController(db, activityService.NewGormSink(db))

	clubs := admin.Group("/clubs")
	clubs.Get("/", ctl.List)
	clubs.Get("/:id", ctl.Detail)
	clubs.Post("/", ctl.Create)
	clubs.Patch("/:id", ctl.Patch)
	clubs.Delete("/:id", ctl.Delete)
	clubs.Put("/:id/users", ctl.AssignUsers)
}
