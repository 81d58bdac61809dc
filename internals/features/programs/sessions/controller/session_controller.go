package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	attendanceDTO "hifzku_backend/internals/features/programs/attendances/dto"
	attendanceModel "hifzku_backend/internals/features/programs/attendances/model"
	attendanceService "hifzku_backend/internals/features/programs/attendances/service"
	"hifzku_backend/internals/features/programs/sessions/dto"
	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	"hifzku_backend/internals/features/programs/sessions/service"
	activityService "hifzku_backend/internals/features/users/activity/service"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type SessionController struct {
	DB    *gorm.DB
	Audit activityService.Sink
}

func NewSessionController(db *gorm.DB, audit activityService.Sink) *SessionController {
	return &SessionController{DB: db, Audit: audit}
}

// POST /sessions/:id/cancel
func (ctl *SessionController) Cancel(c *fiber.Ctx) error {
	id, err := ctl.accessibleSession(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CancelSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	var s *sessionModel.ProgramSessionModel
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		s, err = service.Cancel(c.UserContext(), tx, id, req.Reason)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "cancelled", SubjectType: "program_session", SubjectID: &id,
	})
	return helper.JsonOK(c, "Sesi dibatalkan", s)
}

// POST /sessions/:id/update: tanggal/jam, hanya selama scheduled.
func (ctl *SessionController) Update(c *fiber.Ctx) error {
	id, err := ctl.accessibleSession(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	in, errs := req.ToInput()
	if errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	var s *sessionModel.ProgramSessionModel
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		s, err = service.Update(c.UserContext(), tx, id, in)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "rescheduled", SubjectType: "program_session", SubjectID: &id,
		Properties: datatypes.JSONMap{"date": s.ProgramSessionDate.Format("2006-01-02")},
	})
	return helper.JsonUpdated(c, "Sesi diperbarui", s)
}

// GET /sessions/:id/attendance: membuka lembar (scheduled → completed).
func (ctl *SessionController) Attendance(c *fiber.Ctx) error {
	id, err := ctl.accessibleSession(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var sheet *attendanceService.Sheet
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		sheet, err = attendanceService.OpenAttendance(c.UserContext(), tx, id)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonOK(c, "ok", sheet)
}

// POST /sessions/:id/record-attendance
func (ctl *SessionController) RecordAttendance(c *fiber.Ctx) error {
	id, err := ctl.accessibleSession(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req attendanceDTO.RecordAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	var rec *attendanceModel.AttendanceModel
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = attendanceService.Execute(c.UserContext(), tx, id, req.StudentID, req.ToInput())
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "attendance_recorded", SubjectType: "program_session", SubjectID: &id,
		Properties: datatypes.JSONMap{"student_id": req.StudentID, "status": req.Status},
	})
	return helper.JsonOK(c, "Kehadiran tersimpan", rec)
}

// accessibleSession: :id + klub program milik actor. Error berupa *fiber.Error.
func (ctl *SessionController) accessibleSession(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var row struct {
		ClubID uuid.UUID
	}
	res := ctl.DB.WithContext(c.UserContext()).
		Table("program_sessions").
		Select("programs.program_club_id AS club_id").
		Joins("JOIN programs ON programs.program_id = program_sessions.program_session_program_id").
		Where("program_sessions.program_session_id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		log.Printf("[SESSIONS] load %s: %v", id, res.Error)
		return uuid.Nil, fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, fiber.NewError(fiber.StatusNotFound, "Sesi tidak ditemukan")
	}
	if err := helperAuth.EnsureClubAccess(c, row.ClubID); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func writeError(c *fiber.Ctx, err error) error {
	var se *service.SessionStateError
	var ie *attendanceService.InputError
	switch {
	case errors.As(err, &se):
		return helper.JsonErrorCode(c, fiber.StatusConflict, "SESSION_"+string(se.Status), err.Error())
	case errors.As(err, &ie):
		return helper.JsonValidationError(c, ie.Fields)
	case errors.Is(err, service.ErrEndBeforeStart):
		return helper.JsonValidationError(c, map[string][]string{"end_time": {err.Error()}})
	case errors.Is(err, service.ErrSessionNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Sesi tidak ditemukan")
	case errors.Is(err, attendanceService.ErrStudentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
	case errors.Is(err, attendanceService.ErrProgramNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Program tidak ditemukan")
	case errors.Is(err, attendanceService.ErrStudentNotInClub):
		return helper.JsonErrorCode(c, fiber.StatusUnprocessableEntity, "STUDENT_SCOPE_MISMATCH", err.Error())
	case errors.Is(err, attendanceService.ErrStudentNotInGroup):
		return helper.JsonErrorCode(c, fiber.StatusUnprocessableEntity, "STUDENT_GROUP_MISMATCH", err.Error())
	}
	log.Printf("[SESSIONS] %s %s: %+v", c.Method(), c.Path(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan, coba lagi nanti")
}
