package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/clubs/categories/dto"
	"hifzku_backend/internals/features/clubs/categories/model"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type CategoryController struct {
	DB *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{DB: db}
}

func (ctl *CategoryController) List(c *fiber.Ctx) error {
	var rows []model.CategoryModel
	q := ctl.DB.WithContext(c.UserContext()).Order("category_name ASC")
	if g := c.Query("gender"); g != "" {
		q = q.Where("category_gender = ?", g)
	}
	if err := q.Find(&rows).Error; err != nil {
		return helper.WritePGError(c, err)
	}
	return helper.JsonList(c, "ok", rows, nil)
}

func (ctl *CategoryController) Create(c *fiber.Ctx) error {
	if err := helperAuth.EnsureAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	m := req.ToModel()
	if err := ctl.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Nama kategori sudah dipakai")
		}
		return helper.WritePGError(c, err)
	}
	return helper.JsonCreated(c, "Kategori berhasil dibuat", m)
}
