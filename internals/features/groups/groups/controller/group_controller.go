package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/groups/groups/dto"
	groupModel "hifzku_backend/internals/features/groups/groups/model"
	"hifzku_backend/internals/features/groups/groups/service"
	studentModel "hifzku_backend/internals/features/students/students/model"
	activityService "hifzku_backend/internals/features/users/activity/service"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type GroupController struct {
	DB    *gorm.DB
	Audit activityService.Sink
}

func NewGroupController(db *gorm.DB, audit activityService.Sink) *GroupController {
	return &GroupController{DB: db, Audit: audit}
}

/* =========================
   Read
========================= */

// GET /groups?club_id=&category_id=
func (ctl *GroupController) List(c *fiber.Ctx) error {
	clubID, categoryID, err := ctl.scopeQuery(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := service.ListWithCounts(c.UserContext(), ctl.DB, clubID, categoryID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.GroupResponse, len(rows))
	for i, r := range rows {
		out[i] = dto.GroupResponse{GroupModel: r.GroupModel, StudentsCount: r.StudentsCount}
	}
	return helper.JsonList(c, "ok", out, nil)
}

// GET /groups/can-create?club_id=&category_id=
func (ctl *GroupController) CanCreate(c *fiber.Ctx) error {
	clubID, categoryID, err := ctl.scopeQuery(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ok, err := service.CanCreateNewGroup(c.UserContext(), ctl.DB, clubID, categoryID)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{"can_create": ok})
}

/* =========================
   Mutations
========================= */

// POST /groups
func (ctl *GroupController) Create(c *fiber.Ctx) error {
	var req dto.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	if err := helperAuth.EnsureClubAccess(c, req.ClubID); err != nil {
		return helper.FromFiberError(c, err)
	}

	var res service.CreateResult
	err := ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = service.Create(c.UserContext(), tx, req.ClubID, req.CategoryID, req.Name, req.StudentIDs)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}

	for i := range res.Groups {
		g := res.Groups[i]
		ctl.Audit.Record(c.UserContext(), activityService.Entry{
			ActorID: helperAuth.ActorID(c), Action: "created", SubjectType: "group", SubjectID: &g.GroupID,
			Properties: datatypes.JSONMap{"name": g.GroupName, "first_groups": res.FirstGroups, "assigned": res.Assigned},
		})
	}
	return helper.JsonCreated(c, "Fauj berhasil dibuat", dto.CreateGroupResponse{
		FirstGroups: res.FirstGroups,
		Groups:      res.Groups,
		Assigned:    res.Assigned,
	})
}

// PATCH /groups/:id: rename
func (ctl *GroupController) Rename(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.RenameGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	if err := ctl.ensureGroupAccess(c, id); err != nil {
		return helper.FromFiberError(c, err)
	}

	var g *groupModel.GroupModel
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		g, err = service.Rename(c.UserContext(), tx, id, req.Name)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "renamed", SubjectType: "group", SubjectID: &g.GroupID,
		Properties: datatypes.JSONMap{"name": g.GroupName},
	})
	return helper.JsonUpdated(c, "Nama fauj diperbarui", g)
}

// DELETE /groups/:id
func (ctl *GroupController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := ctl.ensureGroupAccess(c, id); err != nil {
		return helper.FromFiberError(c, err)
	}

	var res service.DeleteResult
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = service.Delete(c.UserContext(), tx, id)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	for i := range res.DeletedGroupIDs {
		gid := res.DeletedGroupIDs[i]
		ctl.Audit.Record(c.UserContext(), activityService.Entry{
			ActorID: helperAuth.ActorID(c), Action: "deleted", SubjectType: "group", SubjectID: &gid,
			Properties: datatypes.JSONMap{"deleted_both": res.DeletedBoth, "unassigned": res.Unassigned},
		})
	}
	return helper.JsonDeleted(c, "Fauj dihapus", fiber.Map{
		"deleted_group_ids": res.DeletedGroupIDs,
		"deleted_both":      res.DeletedBoth,
		"unassigned":        res.Unassigned,
	})
}

// DELETE /groups/:id/force: hanya untuk fauj yang sudah soft-delete.
func (ctl *GroupController) ForceDelete(c *fiber.Ctx) error {
	if err := helperAuth.EnsureAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		return service.ForceDelete(c.UserContext(), tx, id)
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "force_deleted", SubjectType: "group", SubjectID: &id,
	})
	return helper.JsonDeleted(c, "Fauj dihapus permanen", fiber.Map{"group_id": id})
}

// POST /groups/merge
func (ctl *GroupController) Merge(c *fiber.Ctx) error {
	var req dto.MergeGroupsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	if err := ctl.ensureGroupAccess(c, req.SourceGroupID); err != nil {
		return helper.FromFiberError(c, err)
	}

	var res service.MergeResult
	err := ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = service.Merge(c.UserContext(), tx, req.SourceGroupID, req.TargetGroupID)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "merged", SubjectType: "group", SubjectID: &req.SourceGroupID,
		Properties: datatypes.JSONMap{
			"target_group_id": req.TargetGroupID,
			"moved":           res.Moved,
			"deleted_both":    res.DeletedBoth,
		},
	})
	return helper.JsonOK(c, "Fauj berhasil digabung", res)
}

// POST /groups/transfer-student
func (ctl *GroupController) TransferStudent(c *fiber.Ctx) error {
	var req dto.TransferStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	if err := ctl.ensureStudentsAccess(c, []uuid.UUID{req.StudentID}); err != nil {
		return helper.FromFiberError(c, err)
	}

	var res service.TransferResult
	err := ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = service.Transfer(c.UserContext(), tx, req.StudentID, req.GroupID)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	if !res.NoOp {
		ctl.Audit.Record(c.UserContext(), activityService.Entry{
			ActorID: helperAuth.ActorID(c), Action: "transferred", SubjectType: "student", SubjectID: &req.StudentID,
			Properties: datatypes.JSONMap{"group_id": req.GroupID},
		})
	}
	return helper.JsonOK(c, "Siswa dipindahkan", res)
}

// POST /groups/bulk-transfer
func (ctl *GroupController) BulkTransfer(c *fiber.Ctx) error {
	var req dto.BulkTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	if err := ctl.ensureStudentsAccess(c, req.StudentIDs); err != nil {
		return helper.FromFiberError(c, err)
	}

	var res service.BulkTransferResult
	err := ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = service.BulkTransfer(c.UserContext(), tx, req.StudentIDs, req.GroupID)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	ctl.Audit.Record(c.UserContext(), activityService.Entry{
		ActorID: helperAuth.ActorID(c), Action: "bulk_transferred", SubjectType: "group", SubjectID: req.GroupID,
		Properties: datatypes.JSONMap{"student_ids": req.StudentIDs, "moved": res.Moved},
	})
	return helper.JsonOK(c, "Siswa dipindahkan", res)
}

/* =========================
   helpers
========================= */

// scopeQuery: error berupa *fiber.Error, tulis dengan helper.FromFiberError.
func (ctl *GroupController) scopeQuery(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	clubID, err := helper.ParseUUIDQuery(c, "club_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	categoryID, err := helper.ParseUUIDQuery(c, "category_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := helperAuth.EnsureClubAccess(c, clubID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return clubID, categoryID, nil
}

func (ctl *GroupController) ensureGroupAccess(c *fiber.Ctx, groupID uuid.UUID) error {
	var g groupModel.GroupModel
	if err := ctl.DB.WithContext(c.UserContext()).
		Select("group_club_id").
		Where("group_id = ?", groupID).
		Take(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Fauj tidak ditemukan")
		}
		log.Printf("[GROUPS] load group %s: %v", groupID, err)
		return fiber.ErrInternalServerError
	}
	return helperAuth.EnsureClubAccess(c, g.GroupClubID)
}

func (ctl *GroupController) ensureStudentsAccess(c *fiber.Ctx, studentIDs []uuid.UUID) error {
	var clubIDs []uuid.UUID
	if err := ctl.DB.WithContext(c.UserContext()).
		Model(&studentModel.StudentModel{}).
		Where("student_id IN ?", studentIDs).
		Distinct().
		Pluck("student_club_id", &clubIDs).Error; err != nil {
		log.Printf("[GROUPS] load student clubs: %v", err)
		return fiber.ErrInternalServerError
	}
	for _, id := range clubIDs {
		if err := helperAuth.EnsureClubAccess(c, id); err != nil {
			return err
		}
	}
	return nil
}

// writeError: aturan fauj → 409 (dengan kode), not found → 404, sisanya 500.
func writeError(c *fiber.Ctx, err error) error {
	if re, ok := service.AsRuleError(err); ok {
		return helper.JsonErrorCode(c, fiber.StatusConflict, re.Code, re.Error())
	}
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Fauj tidak ditemukan")
	case errors.Is(err, service.ErrStudentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
	case errors.Is(err, service.ErrClubNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Klub tidak ditemukan")
	}
	log.Printf("[GROUPS] %s %s: %+v", c.Method(), c.Path(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan, coba lagi nanti")
}
