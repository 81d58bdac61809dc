package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/groups/groups/controller"
	activityService "hifzku_backend/internals/features/users/activity/service"
)

// GroupAdminRoutes: path statis didaftarkan sebelum /:id.
func GroupAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewGroupController(db, activityService.NewGormSink(db))

	groups := admin.Group("/groups")
	groups.Get("/", ctl.List)
	groups.Get("/can-create", ctl.CanCreate)
	groups.Post("/", ctl.Create)
	groups.Post("/merge", ctl.Merge)
	groups.Post("/transfer-student", ctl.TransferStudent)
	groups.Post("/bulk-transfer", ctl.BulkTransfer)
	groups.Patch("/:id", ctl.Rename)
	groups.Delete("/:id/force", ctl.ForceDelete)
	groups.Delete("/:id", ctl.Delete)
}
