package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	subjectModel "hifzku_backend/internals/features/clubs/subjects/model"
	groupModel "hifzku_backend/internals/features/groups/groups/model"
	"hifzku_backend/internals/features/programs/programs/dto"
	"hifzku_backend/internals/features/programs/programs/model"
	"hifzku_backend/internals/features/programs/programs/service"
	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	sessionService "hifzku_backend/internals/features/programs/sessions/service"
	activityService "hifzku_backend/internals/features/users/activity/service"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
	"hifzku_backend/internals/helpers/dbtime"
)

var errInvalidReference = errors.New("invalid reference")

type ProgramController struct {
	DB    *gorm.DB
	Audit activityService.Sink
}

func NewProgramController(db *gorm.DB, audit activityService.Sink) *ProgramController {
	return &ProgramController{DB: db, Audit: audit}
}

/* =========================
   Read
========================= */

// GET /programs?club_id=&category_id=&group_id=&active=
func (ctl *ProgramController) List(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	p := helper.ResolvePaging(c, 20, 100)
	q := ctl.DB.WithContext(c.UserContext()).Model(&model.ProgramModel{})

	if raw := strings.TrimSpace(c.Query("club_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "club_id tidak valid")
		}
		if err := helperAuth.EnsureClubAccess(c, id); err != nil {
			return helper.FromFiberError(c, err)
		}
		q = q.Where("program_club_id = ?", id)
	} else if !actor.IsAdmin() {
		q = q.Where("program_club_id IN ?", actor.ClubIDs)
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "category_id tidak valid")
		}
		q = q.Where("program_category_id = ?", id)
	}
	if raw := strings.TrimSpace(c.Query("group_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "group_id tidak valid")
		}
		q = q.Where("program_group_id = ?", id)
	}
	switch c.Query("active") {
	case "true":
		q = q.Where("program_is_active = ?", true)
	case "false":
		q = q.Where("program_is_active = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.WritePGError(c, err)
	}
	var rows []model.ProgramModel
	if err := q.Order("program_start_date DESC, program_created_at DESC").
		Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return helper.WritePGError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, p))
}

// GET /programs/:id
func (ctl *ProgramController) Detail(c *fiber.Ctx) error {
	m, err := ctl.loadAccessible(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", m)
}

// GET /programs/:id/sessions: dibagi future / old.
func (ctl *ProgramController) Sessions(c *fiber.Ctx) error {
	m, err := ctl.loadAccessible(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var rows []sessionModel.ProgramSessionModel
	if err := ctl.DB.WithContext(c.UserContext()).
		Where("program_session_program_id = ?", m.ProgramID).
		Order("program_session_date ASC, program_session_start_time ASC").
		Find(&rows).Error; err != nil {
		return helper.WritePGError(c, err)
	}
	future, old := service.BucketSessions(rows, dbtime.Now())
	return helper.JsonOK(c, "ok", dto.BucketedSessions{Future: future, Old: old})
}

// POST /programs/preview: tanggal hasil ekspansi, tidak disimpan.
func (ctl *ProgramController) Preview(c *fiber.Ctx) error {
	var req dto.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	m, errs := req.ToModel()
	if errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	list, err := service.Preview(&m)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromCustomSessions(list))
}

/* =========================
   Mutations
========================= */

// POST /programs: sessions[] dikirim → dipakai apa adanya; selain itu generate dari hari & rentang.
func (ctl *ProgramController) Create(c *fiber.Ctx) error {
	var req dto.CreateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	if err := helperAuth.EnsureClubAccess(c, req.ClubID); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, errs := req.ToModel()
	if errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	custom, errs := req.CustomSessions()
	if errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	var gen service.GenerateResult
	err := ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, &m); err != nil {
			return err
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		var err error
		gen, err = generate(c, tx, &m, custom)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}

	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "created", SubjectType: "program", SubjectID: &m.ProgramID,
		Properties: datatypes.JSONMap{"sessions_created": gen.Created, "custom": custom != nil},
	})
	return helper.JsonCreated(c, "Program berhasil dibuat", dto.ProgramResponse{Program: m, Generation: &gen})
}

// PATCH /programs/:id
func (ctl *ProgramController) Patch(c *fiber.Ctx) error {
	cur, err := ctl.loadAccessible(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	custom, errs := req.CustomSessions()
	if errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	m := *cur
	scheduleChanged, errs := req.Apply(&m)
	if errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	var gen *service.GenerateResult
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, &m); err != nil {
			return err
		}
		if err := tx.Model(&model.ProgramModel{ProgramID: m.ProgramID}).
			Select("program_group_id", "program_subject_id", "program_days_of_week",
				"program_start_date", "program_end_date",
				"program_default_start_time", "program_default_end_time", "program_is_active").
			Updates(&m).Error; err != nil {
			return err
		}
		if custom == nil && !scheduleChanged {
			return nil
		}
		res, err := generate(c, tx, &m, custom)
		gen = &res
		return err
	})
	if err != nil {
		return writeError(c, err)
	}

	props := datatypes.JSONMap{"regenerated": gen != nil}
	if gen != nil {
		props["sessions_created"] = gen.Created
		props["sessions_deleted"] = gen.Deleted
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "updated", SubjectType: "program", SubjectID: &m.ProgramID,
		Properties: props,
	})
	return helper.JsonUpdated(c, "Program diperbarui", dto.ProgramResponse{Program: m, Generation: gen})
}

// POST /programs/:id/regenerate: jalankan ulang generator dari definisi program tersimpan.
func (ctl *ProgramController) Regenerate(c *fiber.Ctx) error {
	m, err := ctl.loadAccessible(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var gen service.GenerateResult
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		gen, err = (&service.Generator{DB: tx}).Execute(c.UserContext(), m)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "regenerated", SubjectType: "program", SubjectID: &m.ProgramID,
		Properties: datatypes.JSONMap{"sessions_created": gen.Created, "sessions_deleted": gen.Deleted},
	})
	return helper.JsonOK(c, "Sesi program dibuat ulang", gen)
}

// DELETE /programs/:id: soft delete; sesi scheduled ikut dihapus, riwayat tetap.
func (ctl *ProgramController) Delete(c *fiber.Ctx) error {
	m, err := ctl.loadAccessible(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var res service.GenerateResult
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		if res, err = (&service.Generator{DB: tx}).ClearScheduled(c.UserContext(), m.ProgramID); err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "deleted", SubjectType: "program", SubjectID: &m.ProgramID,
		Properties: datatypes.JSONMap{"sessions_deleted": res.Deleted, "sessions_kept": res.Preserved},
	})
	return helper.JsonDeleted(c, "Program dihapus", fiber.Map{
		"program_id":       m.ProgramID,
		"sessions_deleted": res.Deleted,
		"sessions_kept":    res.Preserved,
	})
}

/* =========================
   helpers
========================= */

// loadAccessible: program dari :id + cek akses klub. Error berupa *fiber.Error.
func (ctl *ProgramController) loadAccessible(c *fiber.Ctx) (*model.ProgramModel, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var m model.ProgramModel
	if err := ctl.DB.WithContext(c.UserContext()).Where("program_id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Program tidak ditemukan")
		}
		log.Printf("[PROGRAMS] load %s: %v", id, err)
		return nil, fiber.ErrInternalServerError
	}
	if err := helperAuth.EnsureClubAccess(c, m.ProgramClubID); err != nil {
		return nil, err
	}
	return &m, nil
}

// checkReferences: materi harus ada; fauj (bila diisi) aktif & satu scope dengan program.
func checkReferences(tx *gorm.DB, m *model.ProgramModel) error {
	var n int64
	if err := tx.Model(&subjectModel.SubjectModel{}).
		Where("subject_id = ?", m.ProgramSubjectID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(errInvalidReference, "subject_id tidak ditemukan")
	}
	if m.ProgramGroupID == nil {
		return nil
	}
	var g groupModel.GroupModel
	if err := tx.Where("group_id = ?", *m.ProgramGroupID).Take(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(errInvalidReference, "group_id tidak ditemukan")
		}
		return err
	}
	if g.GroupClubID != m.ProgramClubID || g.GroupCategoryID != m.ProgramCategoryID || !g.GroupIsActive {
		return errors.Wrapf(errInvalidReference, "fauj %s bukan fauj aktif di klub/kategori program", g.GroupName)
	}
	return nil
}

func generate(c *fiber.Ctx, tx *gorm.DB, m *model.ProgramModel, custom []service.CustomSession) (service.GenerateResult, error) {
	g := &service.Generator{DB: tx}
	if custom != nil {
		return g.ExecuteWithCustomSessions(c.UserContext(), m, custom)
	}
	return g.Execute(c.UserContext(), m)
}

func writeError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return helper.JsonError(c, fe.Code, fe.Message)
	case errors.Is(err, errInvalidReference):
		return helper.JsonError(c, fiber.StatusBadRequest, strings.TrimSuffix(err.Error(), ": "+errInvalidReference.Error()))
	case errors.Is(err, service.ErrProgramNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Program tidak ditemukan")
	case errors.Is(err, service.ErrInvalidRange), errors.Is(err, sessionService.ErrEndBeforeStart):
		return helper.JsonErrorCode(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	}
	if code, _ := helper.MapPGError(err); code < 500 {
		return helper.WritePGError(c, err)
	}
	log.Printf("[PROGRAMS] %s %s: %+v", c.Method(), c.Path(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan, coba lagi nanti")
}
