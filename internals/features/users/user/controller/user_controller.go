package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activityService "hifzku_backend/internals/features/users/activity/service"
	authService "hifzku_backend/internals/features/users/auth/service"
	"hifzku_backend/internals/features/users/user/dto"
	"hifzku_backend/internals/features/users/user/model"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type UserController struct {
	DB    *gorm.DB
	Audit activityService.Sink
}

func NewUserController(db *gorm.DB, audit activityService.Sink) *UserController {
	return &UserController{DB: db, Audit: audit}
}

// GET /api/a/users?role=&page=&per_page=
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 25, 200)

	q := uc.DB.WithContext(c.UserContext()).Model(&model.UserModel{})
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		q = q.Where("user_role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Printf("[USERS] count: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve users")
	}
	var users []model.UserModel
	if err := q.Order("user_name ASC").Offset(p.Offset).Limit(p.Limit).Find(&users).Error; err != nil {
		log.Printf("[USERS] list: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve users")
	}
	return helper.JsonList(c, "Users fetched successfully", users, helper.BuildPagination(total, p))
}

// GET /api/a/users/search?q=
func (uc *UserController) SearchUsers(c *fiber.Ctx) error {
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if query == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query parameter 'q' is required")
	}
	like := "%" + query + "%"

	var users []model.UserModel
	if err := uc.DB.WithContext(c.UserContext()).
		Where("LOWER(user_name) LIKE ? OR LOWER(user_email) LIKE ?", like, like).
		Order("user_name ASC").
		Limit(20).
		Find(&users).Error; err != nil {
		log.Printf("[USERS] search: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to search users")
	}
	return helper.JsonOK(c, "Users fetched successfully", users)
}

// POST /api/a/users
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	hash, err := authService.HashPassword(req.Password)
	if err != nil {
		log.Printf("[USERS] hash: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create user")
	}
	user := req.ToModel(hash)
	// Select("*"): is_active=false tidak boleh tertimpa default kolom
	if err := uc.DB.WithContext(c.UserContext()).Select("*").Create(user).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Email sudah terdaftar")
		}
		log.Printf("[USERS] create: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	uc.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "created", SubjectType: "user", SubjectID: &user.UserID,
		Properties: datatypes.JSONMap{"role": user.UserRole},
	})
	return helper.JsonCreated(c, "User created successfully", user)
}

// PATCH /api/a/users/:id
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	// admin tidak boleh menurunkan/menonaktifkan dirinya sendiri
	if self := helperAuth.ActorID(c); self != nil && *self == id {
		if (req.Role != nil && *req.Role != "admin") || (req.IsActive != nil && !*req.IsActive) {
			return helper.JsonError(c, fiber.StatusConflict, "Tidak dapat menurunkan atau menonaktifkan akun sendiri")
		}
	}

	var user model.UserModel
	if err := uc.DB.WithContext(c.UserContext()).First(&user, "user_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "User not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve user")
	}

	var hash string
	if req.Password != nil {
		if hash, err = authService.HashPassword(*req.Password); err != nil {
			log.Printf("[USERS] hash: %v", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update user")
		}
	}
	updates := req.ToUpdates(hash)
	if len(updates) == 0 {
		return helper.JsonOK(c, "Tidak ada perubahan", user)
	}
	if err := uc.DB.WithContext(c.UserContext()).Model(&user).Updates(updates).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Email sudah terdaftar")
		}
		log.Printf("[USERS] update %s: %v", id, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update user")
	}
	if err := uc.DB.WithContext(c.UserContext()).First(&user, "user_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve user")
	}

	fields := make([]string, 0, len(updates))
	for k := range updates {
		if k != "user_password" {
			fields = append(fields, k)
		}
	}
	uc.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "updated", SubjectType: "user", SubjectID: &user.UserID,
		Properties: datatypes.JSONMap{"fields": fields, "password_changed": hash != ""},
	})
	return helper.JsonUpdated(c, "User updated successfully", user)
}

// DELETE /api/a/users/:id: soft delete
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if self := helperAuth.ActorID(c); self != nil && *self == id {
		return helper.JsonError(c, fiber.StatusConflict, "Tidak dapat menghapus akun sendiri")
	}

	res := uc.DB.WithContext(c.UserContext()).Delete(&model.UserModel{}, "user_id = ?", id)
	if res.Error != nil {
		log.Printf("[USERS] delete %s: %v", id, res.Error)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete user")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found")
	}
	uc.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "deleted", SubjectType: "user", SubjectID: &id,
	})
	return helper.JsonDeleted(c, "User deleted successfully", fiber.Map{"user_id": id})
}
