package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hifzku_backend/internals/features/clubs/clubs/dto"
	"hifzku_backend/internals/features/clubs/clubs/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
	activityService "hifzku_backend/internals/features/users/activity/service"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type ClubController struct {
	DB    *gorm.DB
	Audit activityService.Sink
}

func NewClubController(db *gorm.DB, audit activityService.Sink) *ClubController {
	return &ClubController{DB: db, Audit: audit}
}

// GET /clubs: admin: semua klub; selain admin: hanya klub yang ditugaskan.
func (ctl *ClubController) List(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	p := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.WithContext(c.UserContext()).Model(&model.ClubModel{})
	if !actor.IsAdmin() {
		q = q.Where("club_id IN ?", actor.ClubIDs)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.WritePGError(c, err)
	}
	var rows []model.ClubModel
	if err := q.Order("club_name ASC").Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return helper.WritePGError(c, err)
	}

	counts, err := ctl.studentCounts(c, rows)
	if err != nil {
		return helper.WritePGError(c, err)
	}
	out := make([]dto.ClubResponse, len(rows))
	for i, r := range rows {
		out[i] = dto.ClubResponse{ClubModel: r, StudentsCount: counts[r.ClubID]}
	}
	return helper.JsonList(c, "ok", out, helper.BuildPagination(total, p))
}

// GET /clubs/:id
func (ctl *ClubController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := helperAuth.EnsureClubAccess(c, id); err != nil {
		return helper.FromFiberError(c, err)
	}

	var m model.ClubModel
	if err := ctl.DB.WithContext(c.UserContext()).Where("club_id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Klub tidak ditemukan")
		}
		return helper.WritePGError(c, err)
	}
	counts, err := ctl.studentCounts(c, []model.ClubModel{m})
	if err != nil {
		return helper.WritePGError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ClubResponse{ClubModel: m, StudentsCount: counts[m.ClubID]})
}

// POST /clubs (admin)
func (ctl *ClubController) Create(c *fiber.Ctx) error {
	if err := helperAuth.EnsureAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateClubRequest
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
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "created", SubjectType: "club", SubjectID: &m.ClubID,
	})
	return helper.JsonCreated(c, "Klub berhasil dibuat", dto.ClubResponse{ClubModel: m})
}

// PATCH /clubs/:id (admin)
func (ctl *ClubController) Patch(c *fiber.Ctx) error {
	if err := helperAuth.EnsureAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.UpdateClubRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	var m model.ClubModel
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("club_id = ?", id).Take(&m).Error; err != nil {
			return err
		}
		if up := req.ToUpdates(); len(up) > 0 {
			if err := tx.Model(&m).Updates(up).Error; err != nil {
				return err
			}
		}
		return tx.Where("club_id = ?", id).Take(&m).Error
	})
	if err != nil {
		return helper.WritePGError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "updated", SubjectType: "club", SubjectID: &m.ClubID,
	})
	return helper.JsonUpdated(c, "Klub diperbarui", m)
}

// DELETE /clubs/:id (admin): ditolak bila masih ada siswa.
func (ctl *ClubController) Delete(c *fiber.Ctx) error {
	if err := helperAuth.EnsureAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var students int64
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var m model.ClubModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("club_id = ?", id).Take(&m).Error; err != nil {
			return err
		}
		if err := tx.Model(&studentModel.StudentModel{}).
			Where("student_club_id = ?", id).Count(&students).Error; err != nil {
			return err
		}
		if students > 0 {
			return nil
		}
		return tx.Delete(&m).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Klub tidak ditemukan")
		}
		return helper.WritePGError(c, err)
	}
	if students > 0 {
		return helper.JsonErrorCode(c, fiber.StatusConflict, "CLUB_HAS_STUDENTS",
			"Klub masih memiliki siswa, pindahkan atau hapus siswa terlebih dahulu")
	}

	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "deleted", SubjectType: "club", SubjectID: &id,
	})
	return helper.JsonDeleted(c, "Klub dihapus", fiber.Map{"club_id": id})
}

// PUT /clubs/:id/users (admin): set supervisor klub.
func (ctl *ClubController) AssignUsers(c *fiber.Ctx) error {
	if err := helperAuth.EnsureAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.AssignUsersRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var m model.ClubModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("club_id = ?", id).Take(&m).Error; err != nil {
			return err
		}
		if err := tx.Where("club_user_club_id = ?", id).Delete(&model.ClubUserModel{}).Error; err != nil {
			return err
		}
		if len(req.UserIDs) == 0 {
			return nil
		}
		rows := make([]model.ClubUserModel, 0, len(req.UserIDs))
		seen := map[uuid.UUID]bool{}
		for _, uid := range req.UserIDs {
			if seen[uid] {
				continue
			}
			seen[uid] = true
			rows = append(rows, model.ClubUserModel{ClubUserClubID: id, ClubUserUserID: uid})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Klub tidak ditemukan")
		}
		return helper.WritePGError(c, err)
	}
	log.Printf("[CLUBS] club %s supervisors=%d", id, len(req.UserIDs))
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "users_assigned", SubjectType: "club", SubjectID: &id,
	})
	return helper.JsonUpdated(c, "Supervisor klub diperbarui", fiber.Map{"club_id": id, "user_ids": req.UserIDs})
}

func (ctl *ClubController) studentCounts(c *fiber.Ctx, clubs []model.ClubModel) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(clubs))
	if len(clubs) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(clubs))
	for i := range clubs {
		ids[i] = clubs[i].ClubID
	}
	var rows []struct {
		ClubID uuid.UUID
		N      int64
	}
	if err := ctl.DB.WithContext(c.UserContext()).
		Model(&studentModel.StudentModel{}).
		Select("student_club_id AS club_id, COUNT(*) AS n").
		Where("student_club_id IN ?", ids).
		Group("student_club_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ClubID] = r.N
	}
	return out, nil
}
