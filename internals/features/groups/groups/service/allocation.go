package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	groupModel "hifzku_backend/internals/features/groups/groups/model"
	attendanceModel "hifzku_backend/internals/features/programs/attendances/model"
	programModel "hifzku_backend/internals/features/programs/programs/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

type CreateResult struct {
	// FirstGroups: true jika scope sebelumnya tanpa fauj dan dua fauj pertama dibuat.
	FirstGroups bool
	Groups      []groupModel.GroupModel
	// Assigned: siswa yang dibagikan (first groups) atau dipindah ke fauj baru.
	Assigned int
}

type DeleteResult struct {
	DeletedGroupIDs []uuid.UUID
	DeletedBoth     bool
	Unassigned      int64
}

type MergeResult struct {
	Moved       int64 `json:"moved"`
	DeletedBoth bool  `json:"deleted_both"`
}

type GroupWithCount struct {
	groupModel.GroupModel
	StudentsCount int64 `json:"students_count"`
}

/* =========================
   canCreateNewGroup
========================= */

// CanCreateNewGroup: tanpa fauj aktif → butuh ≥ 2 siswa di scope;
// selain itu → minimal satu fauj punya ≥ 2 siswa (bisa menyumbang satu).
func CanCreateNewGroup(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID) (bool, error) {
	groups, err := activeGroups(ctx, tx, clubID, categoryID, false)
	if err != nil {
		return false, err
	}
	if len(groups) == 0 {
		n, err := countStudentsInScope(ctx, tx, clubID, categoryID)
		if err != nil {
			return false, err
		}
		return n >= 2, nil
	}
	counts, err := studentCounts(ctx, tx, groupIDs(groups))
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if counts[g.GroupID] >= 2 {
			return true, nil
		}
	}
	return false, nil
}

/* =========================
   Create (guarded) & Execute
========================= */

// Create: kunci scope, cek CanCreateNewGroup, jalankan Execute, lalu (kasus fauj
// berikutnya) pindahkan studentIDs ke fauj baru dengan aturan BulkTransfer.
func Create(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID, customName *string, studentIDs []uuid.UUID) (CreateResult, error) {
	if err := LockScope(ctx, tx, clubID); err != nil {
		return CreateResult{}, err
	}
	ok, err := CanCreateNewGroup(ctx, tx, clubID, categoryID)
	if err != nil {
		return CreateResult{}, err
	}
	if !ok {
		return CreateResult{}, ruleErr(CodeInsufficientStudents, "",
			"not enough students to create a new group: a first split needs at least 2 students, later groups need a group with at least 2 students")
	}

	res, err := Execute(ctx, tx, clubID, categoryID, customName)
	if err != nil {
		return CreateResult{}, err
	}

	if !res.FirstGroups && len(studentIDs) > 0 {
		target := res.Groups[0].GroupID
		bt, err := BulkTransfer(ctx, tx, studentIDs, &target)
		if err != nil {
			return CreateResult{}, err
		}
		res.Assigned = int(bt.Moved)
	}
	return res, nil
}

// Execute membuat fauj tanpa cek CanCreateNewGroup (pemanggil yang bertanggung jawab).
//   - scope tanpa fauj aktif: buat dua label pertama, bagi semua siswa tanpa fauj (selisih ≤ 1).
//   - selain itu: satu fauj kosong dengan label bebas pertama, atau customName.
func Execute(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID, customName *string) (CreateResult, error) {
	if err := LockScope(ctx, tx, clubID); err != nil {
		return CreateResult{}, err
	}
	groups, err := activeGroups(ctx, tx, clubID, categoryID, true)
	if err != nil {
		return CreateResult{}, err
	}
	if len(groups) == 0 {
		return createFirstGroups(ctx, tx, clubID, categoryID)
	}
	return createNextGroup(ctx, tx, clubID, categoryID, groups, customName)
}

func createFirstGroups(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID) (CreateResult, error) {
	var students []studentModel.StudentModel
	if err := tx.WithContext(ctx).
		Clauses(forUpdate).
		Select("student_id").
		Where("student_club_id = ? AND student_category_id = ? AND student_group_id IS NULL", clubID, categoryID).
		Order("student_enrolled_at ASC, student_last_name ASC, student_first_name ASC, student_id ASC").
		Find(&students).Error; err != nil {
		return CreateResult{}, errors.Wrap(err, "load ungrouped students")
	}

	pair := make([]groupModel.GroupModel, 2)
	for i := range pair {
		pair[i] = groupModel.GroupModel{
			GroupClubID:     clubID,
			GroupCategoryID: categoryID,
			GroupName:       Alphabet[i],
			GroupOrder:      i + 1,
			GroupIsActive:   true,
		}
		if err := tx.WithContext(ctx).Create(&pair[i]).Error; err != nil {
			return CreateResult{}, errors.Wrap(err, "create group")
		}
	}

	// ceil(N/2) pertama ke label pertama
	half := (len(students) + 1) / 2
	buckets := [][]studentModel.StudentModel{students[:half], students[half:]}
	for i, b := range buckets {
		if len(b) == 0 {
			continue
		}
		ids := make([]uuid.UUID, len(b))
		for j := range b {
			ids[j] = b[j].StudentID
		}
		if err := tx.WithContext(ctx).
			Model(&studentModel.StudentModel{}).
			Where("student_id IN ?", ids).
			Update("student_group_id", pair[i].GroupID).Error; err != nil {
			return CreateResult{}, errors.Wrap(err, "assign students")
		}
	}

	return CreateResult{FirstGroups: true, Groups: pair, Assigned: len(students)}, nil
}

func createNextGroup(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID, groups []groupModel.GroupModel, customName *string) (CreateResult, error) {
	used := make([]string, len(groups))
	for i, g := range groups {
		used[i] = g.GroupName
	}

	var (
		name  string
		order int
	)
	if customName != nil && NormalizeName(*customName) != "" {
		name = NormalizeName(*customName)
		if !validName(name) {
			return CreateResult{}, ruleErr(CodeNameInvalid, name, "group name must be 1-%d characters", maxGroupNameLen)
		}
		if nameTaken(groups, name, uuid.Nil) {
			return CreateResult{}, ruleErr(CodeNameTaken, name, "an active group with this name already exists")
		}
		order = orderFor(name, groups, uuid.Nil)
	} else {
		var ok bool
		name, order, ok = NextFreeLabel(used)
		if !ok {
			return CreateResult{}, ruleErr(CodeAlphabetExhausted, "", "all %d group labels are in use", len(Alphabet))
		}
	}

	g := groupModel.GroupModel{
		GroupClubID:     clubID,
		GroupCategoryID: categoryID,
		GroupName:       name,
		GroupOrder:      order,
		GroupIsActive:   true,
	}
	if err := tx.WithContext(ctx).Create(&g).Error; err != nil {
		return CreateResult{}, errors.Wrap(err, "create group")
	}
	return CreateResult{Groups: []groupModel.GroupModel{g}}, nil
}

func nameTaken(groups []groupModel.GroupModel, name string, except uuid.UUID) bool {
	n := NormalizeName(name)
	for _, g := range groups {
		if g.GroupID != except && NormalizeName(g.GroupName) == n {
			return true
		}
	}
	return false
}

/* =========================
   Delete / Merge
========================= */

// Delete: ditolak jika fauj masih punya siswa. Jika scope tepat punya dua fauj aktif,
// keduanya di-soft-delete dan siswa fauj lainnya menjadi tanpa fauj.
func Delete(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (DeleteResult, error) {
	g, err := loadGroup(ctx, tx, groupID, false)
	if err != nil {
		return DeleteResult{}, err
	}
	if err := LockScope(ctx, tx, g.GroupClubID); err != nil {
		return DeleteResult{}, err
	}
	groups, err := activeGroups(ctx, tx, g.GroupClubID, g.GroupCategoryID, true)
	if err != nil {
		return DeleteResult{}, err
	}
	if g, err = loadGroup(ctx, tx, groupID, false); err != nil {
		return DeleteResult{}, err
	}

	counts, err := studentCounts(ctx, tx, []uuid.UUID{g.GroupID})
	if err != nil {
		return DeleteResult{}, err
	}
	if n := counts[g.GroupID]; n > 0 {
		return DeleteResult{}, ruleErr(CodeGroupNotEmpty, g.GroupName, "group still has %d student(s); move them before deleting", n)
	}

	if len(groups) == 2 && containsGroup(groups, g.GroupID) {
		ids := groupIDs(groups)
		unassigned, err := unassignStudents(ctx, tx, ids)
		if err != nil {
			return DeleteResult{}, err
		}
		if err := softDeleteGroups(ctx, tx, ids); err != nil {
			return DeleteResult{}, err
		}
		return DeleteResult{DeletedGroupIDs: ids, DeletedBoth: true, Unassigned: unassigned}, nil
	}

	if err := softDeleteGroups(ctx, tx, []uuid.UUID{g.GroupID}); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{DeletedGroupIDs: []uuid.UUID{g.GroupID}}, nil
}

// Merge: semua siswa source → target. Jika scope tepat punya dua fauj aktif (source & target),
// keduanya di-soft-delete dan semua siswa terdampak menjadi tanpa fauj.
func Merge(ctx context.Context, tx *gorm.DB, sourceID, targetID uuid.UUID) (MergeResult, error) {
	if sourceID == targetID {
		return MergeResult{}, ruleErr(CodeSameGroup, "", "source and target group must differ")
	}
	src, err := loadGroup(ctx, tx, sourceID, false)
	if err != nil {
		return MergeResult{}, err
	}
	if err := LockScope(ctx, tx, src.GroupClubID); err != nil {
		return MergeResult{}, err
	}
	groups, err := activeGroups(ctx, tx, src.GroupClubID, src.GroupCategoryID, true)
	if err != nil {
		return MergeResult{}, err
	}
	if src, err = loadGroup(ctx, tx, sourceID, false); err != nil {
		return MergeResult{}, err
	}
	dst, err := loadGroup(ctx, tx, targetID, true)
	if err != nil {
		return MergeResult{}, err
	}
	if !src.SameScope(dst) {
		return MergeResult{}, ruleErr(CodeScopeMismatch, dst.GroupName, "target group belongs to another club or category")
	}
	if !src.GroupIsActive {
		return MergeResult{}, ruleErr(CodeGroupInactive, src.GroupName, "source group is not active")
	}
	if !dst.GroupIsActive {
		return MergeResult{}, ruleErr(CodeGroupInactive, dst.GroupName, "target group is not active")
	}

	mv := tx.WithContext(ctx).
		Model(&studentModel.StudentModel{}).
		Where("student_group_id = ?", src.GroupID).
		Update("student_group_id", dst.GroupID)
	if mv.Error != nil {
		return MergeResult{}, errors.Wrap(mv.Error, "move students")
	}
	res := MergeResult{Moved: mv.RowsAffected}

	if len(groups) == 2 {
		ids := []uuid.UUID{src.GroupID, dst.GroupID}
		if _, err := unassignStudents(ctx, tx, ids); err != nil {
			return MergeResult{}, err
		}
		if err := softDeleteGroups(ctx, tx, ids); err != nil {
			return MergeResult{}, err
		}
		res.DeletedBoth = true
		return res, nil
	}

	if err := softDeleteGroups(ctx, tx, []uuid.UUID{src.GroupID}); err != nil {
		return MergeResult{}, err
	}
	return res, nil
}

// ForceDelete: hard delete fauj yang sudah soft-delete; referensi program/siswa/absensi di-null-kan
// (sama dengan FK ON DELETE SET NULL).
func ForceDelete(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error {
	// urutan lock: klub dulu, baru fauj (club_id fauj tidak pernah berubah)
	var clubIDs []uuid.UUID
	if err := tx.WithContext(ctx).Unscoped().
		Model(&groupModel.GroupModel{}).
		Where("group_id = ?", groupID).
		Limit(1).
		Pluck("group_club_id", &clubIDs).Error; err != nil {
		return errors.Wrap(err, "load group scope")
	}
	if len(clubIDs) == 0 {
		return ErrGroupNotFound
	}
	if err := LockScope(ctx, tx, clubIDs[0]); err != nil && !errors.Is(err, ErrClubNotFound) {
		return err
	}

	var g groupModel.GroupModel
	if err := tx.WithContext(ctx).Unscoped().
		Clauses(forUpdate).
		Where("group_id = ?", groupID).
		Take(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return errors.Wrap(err, "load group")
	}
	if !g.GroupDeletedAt.Valid {
		return ruleErr(CodeGroupStillActive, g.GroupName, "only a deleted group can be removed permanently")
	}

	db := tx.WithContext(ctx)
	if err := db.Unscoped().Model(&programModel.ProgramModel{}).
		Where("program_group_id = ?", g.GroupID).
		Update("program_group_id", nil).Error; err != nil {
		return errors.Wrap(err, "detach programs")
	}
	if err := db.Unscoped().Model(&studentModel.StudentModel{}).
		Where("student_group_id = ?", g.GroupID).
		Update("student_group_id", nil).Error; err != nil {
		return errors.Wrap(err, "detach students")
	}
	if err := db.Model(&attendanceModel.AttendanceModel{}).
		Where("attendance_group_id = ?", g.GroupID).
		Update("attendance_group_id", nil).Error; err != nil {
		return errors.Wrap(err, "detach attendances")
	}
	if err := db.Unscoped().Delete(&groupModel.GroupModel{}, "group_id = ?", g.GroupID).Error; err != nil {
		return errors.Wrap(err, "hard delete group")
	}
	return nil
}

/* =========================
   Rename & List
========================= */

// Rename: nama custom, unik di antara fauj aktif scope (banding NFC).
func Rename(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, name string) (*groupModel.GroupModel, error) {
	g, err := loadGroup(ctx, tx, groupID, false)
	if err != nil {
		return nil, err
	}
	if err := LockScope(ctx, tx, g.GroupClubID); err != nil {
		return nil, err
	}
	groups, err := activeGroups(ctx, tx, g.GroupClubID, g.GroupCategoryID, true)
	if err != nil {
		return nil, err
	}
	if g, err = loadGroup(ctx, tx, groupID, false); err != nil {
		return nil, err
	}

	name = NormalizeName(name)
	if !validName(name) {
		return nil, ruleErr(CodeNameInvalid, g.GroupName, "group name must be 1-%d characters", maxGroupNameLen)
	}
	if nameTaken(groups, name, g.GroupID) {
		return nil, ruleErr(CodeNameTaken, name, "an active group with this name already exists")
	}
	order := orderFor(name, groups, g.GroupID)
	if err := tx.WithContext(ctx).Model(g).Updates(map[string]any{
		"group_name":  name,
		"group_order": order,
	}).Error; err != nil {
		return nil, errors.Wrap(err, "rename group")
	}
	g.GroupName = name
	g.GroupOrder = order
	return g, nil
}

// ListWithCounts: fauj aktif scope + jumlah siswa (dihitung live), urut order.
func ListWithCounts(ctx context.Context, db *gorm.DB, clubID, categoryID uuid.UUID) ([]GroupWithCount, error) {
	groups, err := activeGroups(ctx, db, clubID, categoryID, false)
	if err != nil {
		return nil, err
	}
	counts, err := studentCounts(ctx, db, groupIDs(groups))
	if err != nil {
		return nil, err
	}
	out := make([]GroupWithCount, len(groups))
	for i, g := range groups {
		out[i] = GroupWithCount{GroupModel: g, StudentsCount: counts[g.GroupID]}
	}
	return out, nil
}

/* =========================
   internals
========================= */

func containsGroup(gs []groupModel.GroupModel, id uuid.UUID) bool {
	for _, g := range gs {
		if g.GroupID == id {
			return true
		}
	}
	return false
}

func unassignStudents(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&studentModel.StudentModel{}).
		Where("student_group_id IN ?", groupIDs).
		Update("student_group_id", nil)
	return res.RowsAffected, errors.Wrap(res.Error, "unassign students")
}

func softDeleteGroups(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	err := tx.WithContext(ctx).
		Model(&groupModel.GroupModel{}).
		Where("group_id IN ?", ids).
		Updates(map[string]any{
			"group_is_active":  false,
			"group_deleted_at": time.Now().UTC(),
		}).Error
	return errors.Wrap(err, "soft delete groups")
}
