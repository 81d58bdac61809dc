package controller

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	groupService "hifzku_backend/internals/features/groups/groups/service"
	"hifzku_backend/internals/features/students/students/dto"
	studentService "hifzku_backend/internals/features/students/students/service"
	activityService "hifzku_backend/internals/features/users/activity/service"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type StudentController struct {
	DB    *gorm.DB
	Audit activityService.Sink
}

func NewStudentController(db *gorm.DB, audit activityService.Sink) *StudentController {
	return &StudentController{DB: db, Audit: audit}
}

// GET /students?club_id=&category_id=&group_id=&unassigned=&q=&page=&per_page=
func (ctl *StudentController) List(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	p := helper.ResolvePaging(c, 25, 200)
	f := studentService.ListFilter{
		Query:  c.Query("q"),
		Offset: p.Offset,
		Limit:  p.Limit,
	}

	if raw := strings.TrimSpace(c.Query("club_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "club_id tidak valid")
		}
		if !actor.CanAccessClub(id) {
			return helper.JsonError(c, fiber.StatusForbidden, helperAuth.ErrClubNotOwned.Error())
		}
		f.ClubIDs = []uuid.UUID{id}
	} else if !actor.IsAdmin() {
		f.ClubIDs = append([]uuid.UUID{}, actor.ClubIDs...)
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "category_id tidak valid")
		}
		f.CategoryID = &id
	}
	if raw := strings.TrimSpace(c.Query("group_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "group_id tidak valid")
		}
		f.GroupID = &id
	}
	if raw := c.Query("unassigned"); raw != "" {
		f.Unassigned, _ = strconv.ParseBool(raw)
	}

	rows, total, err := studentService.List(c.UserContext(), ctl.DB, f)
	if err != nil {
		log.Printf("[STUDENTS] list: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data siswa")
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, p))
}

// GET /students/:id
func (ctl *StudentController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	st, err := studentService.Get(c.UserContext(), ctl.DB, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := helperAuth.EnsureClubAccess(c, st.StudentClubID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", st)
}

// POST /students: registrasi + penempatan fauj.
func (ctl *StudentController) Create(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	if err := helperAuth.EnsureClubAccess(c, req.StudentClubID); err != nil {
		return helper.FromFiberError(c, err)
	}

	st := req.ToModel()
	if err := studentService.Register(c.UserContext(), ctl.DB, &st); err != nil {
		return writeError(c, err)
	}

	props := datatypes.JSONMap{"club_id": st.StudentClubID, "category_id": st.StudentCategoryID}
	if st.StudentGroupID != nil {
		props["group_id"] = *st.StudentGroupID
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "registered", SubjectType: "student",
		SubjectID: &st.StudentID, Properties: props,
	})
	return helper.JsonCreated(c, "Siswa berhasil didaftarkan", st)
}

// PATCH /students/:id: profil saja.
func (ctl *StudentController) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	cur, err := studentService.Get(c.UserContext(), ctl.DB, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := helperAuth.EnsureClubAccess(c, cur.StudentClubID); err != nil {
		return helper.FromFiberError(c, err)
	}

	st, err := studentService.UpdateProfile(c.UserContext(), ctl.DB, id, req.ToUpdates())
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "updated", SubjectType: "student", SubjectID: &st.StudentID,
	})
	return helper.JsonUpdated(c, "Siswa diperbarui", st)
}

// DELETE /students/:id: soft delete.
func (ctl *StudentController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	cur, err := studentService.Get(c.UserContext(), ctl.DB, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := helperAuth.EnsureClubAccess(c, cur.StudentClubID); err != nil {
		return helper.FromFiberError(c, err)
	}

	if _, err := studentService.Delete(c.UserContext(), ctl.DB, id); err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "deleted", SubjectType: "student", SubjectID: &id,
	})
	return helper.JsonDeleted(c, "Siswa dihapus", fiber.Map{"student_id": id})
}

func writeError(c *fiber.Ctx, err error) error {
	if re, ok := groupService.AsRuleError(err); ok {
		return helper.JsonErrorCode(c, fiber.StatusConflict, re.Code, re.Error())
	}
	switch {
	case errors.Is(err, studentService.ErrStudentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
	case errors.Is(err, groupService.ErrGroupNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Fauj tidak ditemukan")
	case errors.Is(err, groupService.ErrClubNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Klub tidak ditemukan")
	}
	if code, _ := helper.MapPGError(err); code < 500 {
		return helper.WritePGError(c, err)
	}
	log.Printf("[STUDENTS] %s %s: %+v", c.Method(), c.Path(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan, coba lagi nanti")
}
