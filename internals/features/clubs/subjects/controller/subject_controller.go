package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/clubs/subjects/dto"
	"hifzku_backend/internals/features/clubs/subjects/model"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type SubjectController struct {
	DB *gorm.DB
}

func NewSubjectController(db *gorm.DB) *SubjectController {
	return &SubjectController{DB: db}
}

// GET /subjects?q=
func (ctl *SubjectController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	q := ctl.DB.WithContext(c.UserContext()).Model(&model.SubjectModel{})
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("LOWER(subject_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.WritePGError(c, err)
	}
	var rows []model.SubjectModel
	if err := q.Order("subject_name ASC").Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return helper.WritePGError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, p))
}

func (ctl *SubjectController) Create(c *fiber.Ctx) error {
	if err := helperAuth.EnsureAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	m := req.ToModel()
	if err := ctl.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.WritePGError(c, err)
	}
	return helper.JsonCreated(c, "Materi berhasil dibuat", m)
}
