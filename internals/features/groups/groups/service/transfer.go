package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	groupModel "hifzku_backend/internals/features/groups/groups/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

type TransferResult struct {
	Student studentModel.StudentModel `json:"student"`
	NoOp    bool                      `json:"no_op"`
}

type BulkTransferResult struct {
	Moved int64 `json:"moved"`
}

// TransferStudent: primitive tanpa validasi; set student_group_id = target (nil = tanpa fauj).
func TransferStudent(ctx context.Context, tx *gorm.DB, student *studentModel.StudentModel, target *groupModel.GroupModel) error {
	var gid *uuid.UUID
	if target != nil {
		id := target.GroupID
		gid = &id
	}
	if err := tx.WithContext(ctx).
		Model(&studentModel.StudentModel{}).
		Where("student_id = ?", student.StudentID).
		Update("student_group_id", gid).Error; err != nil {
		return errors.Wrap(err, "transfer student")
	}
	student.StudentGroupID = gid
	return nil
}

func sameGroup(a *uuid.UUID, b *groupModel.GroupModel) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == b.GroupID
}

// validateTarget: aturan target yang sama untuk transfer tunggal & massal.
func validateTarget(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID, target *groupModel.GroupModel) error {
	if target == nil {
		n, err := countActiveGroups(ctx, tx, clubID, categoryID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ruleErr(CodeUngroupNotAllowed, "", "a student cannot be left without a group while the scope has %d active group(s)", n)
		}
		return nil
	}
	if target.GroupClubID != clubID || target.GroupCategoryID != categoryID {
		return ruleErr(CodeScopeMismatch, target.GroupName, "target group belongs to another club or category")
	}
	if !target.GroupIsActive || target.GroupDeletedAt.Valid {
		return ruleErr(CodeGroupInactive, target.GroupName, "target group is not active")
	}
	return nil
}

// ValidateTransfer: tolak ungroup saat ada fauj aktif, target beda scope / tidak aktif,
// atau memindahkan anggota terakhir fauj asal. Pindah ke fauj yang sama = no-op (valid).
func ValidateTransfer(ctx context.Context, tx *gorm.DB, student *studentModel.StudentModel, target *groupModel.GroupModel) error {
	if sameGroup(student.StudentGroupID, target) {
		return nil
	}
	if err := validateTarget(ctx, tx, student.StudentClubID, student.StudentCategoryID, target); err != nil {
		return err
	}
	if student.StudentGroupID == nil {
		return nil
	}

	src, err := loadGroup(ctx, tx, *student.StudentGroupID, false)
	if errors.Is(err, ErrGroupNotFound) {
		// fauj asal sudah terhapus; tidak ada yang bisa dikosongkan
		return nil
	}
	if err != nil {
		return err
	}
	counts, err := studentCounts(ctx, tx, []uuid.UUID{src.GroupID})
	if err != nil {
		return err
	}
	if counts[src.GroupID] <= 1 {
		return ruleErr(CodeWouldEmptyGroup, src.GroupName, "student is the last member of the group; merge or delete the group instead")
	}
	return nil
}

// Transfer: kunci scope → siswa → fauj (asal & target), validasi, lalu pindahkan.
func Transfer(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, targetGroupID *uuid.UUID) (TransferResult, error) {
	st, err := loadStudent(ctx, tx, studentID, false)
	if err != nil {
		return TransferResult{}, err
	}
	if err := LockScope(ctx, tx, st.StudentClubID); err != nil {
		return TransferResult{}, err
	}
	if st, err = loadStudent(ctx, tx, studentID, true); err != nil {
		return TransferResult{}, err
	}
	if _, err := activeGroups(ctx, tx, st.StudentClubID, st.StudentCategoryID, true); err != nil {
		return TransferResult{}, err
	}

	var target *groupModel.GroupModel
	if targetGroupID != nil {
		if target, err = loadGroup(ctx, tx, *targetGroupID, true); err != nil {
			return TransferResult{}, err
		}
	}

	if sameGroup(st.StudentGroupID, target) {
		return TransferResult{Student: *st, NoOp: true}, nil
	}
	if err := ValidateTransfer(ctx, tx, st, target); err != nil {
		return TransferResult{}, err
	}
	if err := TransferStudent(ctx, tx, st, target); err != nil {
		return TransferResult{}, err
	}
	return TransferResult{Student: *st}, nil
}

// BulkTransfer: aturan yang sama dievaluasi per fauj asal; satu UPDATE, semua atau tidak sama sekali.
// Semua siswa harus berada di satu scope.
func BulkTransfer(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID, targetGroupID *uuid.UUID) (BulkTransferResult, error) {
	ids := dedupe(studentIDs)
	if len(ids) == 0 {
		return BulkTransferResult{}, nil
	}

	var first studentModel.StudentModel
	if err := tx.WithContext(ctx).Where("student_id = ?", ids[0]).Take(&first).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BulkTransferResult{}, ErrStudentNotFound
		}
		return BulkTransferResult{}, errors.Wrap(err, "load student")
	}
	clubID, categoryID := first.StudentClubID, first.StudentCategoryID

	if err := LockScope(ctx, tx, clubID); err != nil {
		return BulkTransferResult{}, err
	}
	groups, err := activeGroups(ctx, tx, clubID, categoryID, true)
	if err != nil {
		return BulkTransferResult{}, err
	}

	var students []studentModel.StudentModel
	if err := tx.WithContext(ctx).
		Clauses(forUpdate).
		Where("student_id IN ?", ids).
		Find(&students).Error; err != nil {
		return BulkTransferResult{}, errors.Wrap(err, "load students")
	}
	if len(students) != len(ids) {
		return BulkTransferResult{}, ErrStudentNotFound
	}
	for _, s := range students {
		if s.StudentClubID != clubID || s.StudentCategoryID != categoryID {
			return BulkTransferResult{}, ruleErr(CodeScopeMismatch, "", "all students must belong to the same club and category")
		}
	}

	var target *groupModel.GroupModel
	if targetGroupID != nil {
		if target, err = loadGroup(ctx, tx, *targetGroupID, true); err != nil {
			return BulkTransferResult{}, err
		}
	}

	// siswa yang benar-benar pindah, dikelompokkan per fauj asal
	moving := make([]uuid.UUID, 0, len(students))
	perSource := map[uuid.UUID]int64{}
	for _, s := range students {
		if sameGroup(s.StudentGroupID, target) {
			continue
		}
		moving = append(moving, s.StudentID)
		if s.StudentGroupID != nil {
			perSource[*s.StudentGroupID]++
		}
	}
	if len(moving) == 0 {
		return BulkTransferResult{}, nil
	}

	if err := validateTarget(ctx, tx, clubID, categoryID, target); err != nil {
		return BulkTransferResult{}, err
	}

	srcIDs := make([]uuid.UUID, 0, len(perSource))
	for id := range perSource {
		srcIDs = append(srcIDs, id)
	}
	totals, err := studentCounts(ctx, tx, srcIDs)
	if err != nil {
		return BulkTransferResult{}, err
	}
	names := make(map[uuid.UUID]string, len(groups))
	for _, g := range groups {
		names[g.GroupID] = g.GroupName
	}
	for _, src := range groups {
		n, ok := perSource[src.GroupID]
		if !ok {
			continue
		}
		if n >= totals[src.GroupID] {
			return BulkTransferResult{}, ruleErr(CodeWouldEmptyGroup, names[src.GroupID],
				"moving %d student(s) would leave the group empty", n)
		}
	}

	var gid *uuid.UUID
	if target != nil {
		id := target.GroupID
		gid = &id
	}
	res := tx.WithContext(ctx).
		Model(&studentModel.StudentModel{}).
		Where("student_id IN ?", moving).
		Update("student_group_id", gid)
	if res.Error != nil {
		return BulkTransferResult{}, errors.Wrap(res.Error, "bulk transfer")
	}
	return BulkTransferResult{Moved: res.RowsAffected}, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
