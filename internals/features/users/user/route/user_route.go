package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/constants"
	activityService "hifzku_backend/internals/features/users/activity/service"
	userController "hifzku_backend/internals/features/users/user/controller"
	authMiddleware "hifzku_backend/internals/middlewares/auth"
)

// UserAdminRoutes: /users – hanya admin
func UserAdminRoutes(admin fiber.Router, db *gorm.DB) {
	userCtrl := userController.NewUserController(db, activityService.NewGormSink(db))

	users := admin.Group("/users", authMiddleware.RequireRoles(constants.AdminOnly))
	users.Get("/", userCtrl.GetUsers)
	users.Get("/search", userCtrl.SearchUsers)
	users.Post("/", userCtrl.CreateUser)
	users.Patch("/:id", userCtrl.UpdateUser)
	users.Delete("/:id", userCtrl.DeleteUser)
}
