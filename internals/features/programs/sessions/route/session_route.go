package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/programs/sessions/controller"
	activityService "hifzku_backend/internals/features/users/activity/service"
)

func SessionAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewSessionController(db, activityService.NewGormSink(db))

	sessions := admin.Group("/sessions")
	sessions.Post("/:id/cancel", ctl.Cancel)
	sessions.Post("/:id/update", ctl.Update)
	sessions.Get("/:id/attendance", ctl.Attendance)
	sessions.Post("/:id/record-attendance", ctl.RecordAttendance)
}
