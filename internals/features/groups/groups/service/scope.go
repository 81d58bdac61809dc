package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	clubModel "hifzku_backend/internals/features/clubs/clubs/model"
	groupModel "hifzku_backend/internals/features/groups/groups/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

// LockScope mengunci baris club (anchor scope). Semua mutasi fauj/siswa di scope
// mengambil kunci ini dulu, baru kunci baris fauj/siswa.
func LockScope(ctx context.Context, tx *gorm.DB, clubID uuid.UUID) error {
	var club clubModel.ClubModel
	err := tx.WithContext(ctx).
		Clauses(forUpdate).
		Select("club_id").
		Where("club_id = ?", clubID).
		Take(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrClubNotFound
	}
	return errors.Wrap(err, "lock club")
}

// activeGroups: fauj aktif di scope, urut order lalu nama.
func activeGroups(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID, lock bool) ([]groupModel.GroupModel, error) {
	q := tx.WithContext(ctx).
		Where("group_club_id = ? AND group_category_id = ? AND group_is_active = ?", clubID, categoryID, true).
		Order("group_order ASC, group_name ASC")
	if lock {
		q = q.Clauses(forUpdate)
	}
	var out []groupModel.GroupModel
	if err := q.Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "load active groups")
	}
	return out, nil
}

func countActiveGroups(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).
		Model(&groupModel.GroupModel{}).
		Where("group_club_id = ? AND group_category_id = ? AND group_is_active = ?", clubID, categoryID, true).
		Count(&n).Error
	return n, errors.Wrap(err, "count active groups")
}

// loadGroup: fauj hidup (belum soft-delete), opsional FOR UPDATE.
func loadGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, lock bool) (*groupModel.GroupModel, error) {
	q := tx.WithContext(ctx)
	if lock {
		q = q.Clauses(forUpdate)
	}
	var g groupModel.GroupModel
	if err := q.Where("group_id = ?", groupID).Take(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, errors.Wrap(err, "load group")
	}
	return &g, nil
}

func loadStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, lock bool) (*studentModel.StudentModel, error) {
	q := tx.WithContext(ctx)
	if lock {
		q = q.Clauses(forUpdate)
	}
	var s studentModel.StudentModel
	if err := q.Where("student_id = ?", studentID).Take(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, errors.Wrap(err, "load student")
	}
	return &s, nil
}

// studentCounts: jumlah siswa hidup per fauj (fauj tanpa siswa tidak muncul di map).
func studentCounts(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return out, nil
	}
	type row struct {
		GroupID uuid.UUID
		N       int64
	}
	var rows []row
	if err := tx.WithContext(ctx).
		Model(&studentModel.StudentModel{}).
		Select("student_group_id AS group_id, COUNT(*) AS n").
		Where("student_group_id IN ?", groupIDs).
		Group("student_group_id").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count students per group")
	}
	for _, r := range rows {
		out[r.GroupID] = r.N
	}
	return out, nil
}

func countStudentsInScope(ctx context.Context, tx *gorm.DB, clubID, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).
		Model(&studentModel.StudentModel{}).
		Where("student_club_id = ? AND student_category_id = ?", clubID, categoryID).
		Count(&n).Error
	return n, errors.Wrap(err, "count students in scope")
}

func groupIDs(gs []groupModel.GroupModel) []uuid.UUID {
	out := make([]uuid.UUID, len(gs))
	for i := range gs {
		out[i] = gs[i].GroupID
	}
	return out
}
