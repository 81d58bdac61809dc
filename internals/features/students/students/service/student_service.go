package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	groupService "hifzku_backend/internals/features/groups/groups/service"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

var ErrStudentNotFound = errors.New("student not found")

// Register: simpan siswa baru setelah penempatan fauj (lihat PlaceNewStudent).
// Seluruhnya dalam satu transaksi agar hitungan fauj tidak balapan dengan transfer.
func Register(ctx context.Context, db *gorm.DB, st *studentModel.StudentModel) error {
	st.StudentFirstName = strings.TrimSpace(st.StudentFirstName)
	st.StudentLastName = strings.TrimSpace(st.StudentLastName)

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := groupService.PlaceNewStudent(ctx, tx, st); err != nil {
			return err
		}
		if err := tx.Create(st).Error; err != nil {
			return errors.Wrap(err, "create student")
		}
		return nil
	})
}

// ListFilter: semua opsional; Unassigned=true hanya siswa tanpa fauj.
type ListFilter struct {
	ClubIDs    []uuid.UUID
	CategoryID *uuid.UUID
	GroupID    *uuid.UUID
	Unassigned bool
	Query      string
	Offset     int
	Limit      int
}

func List(ctx context.Context, db *gorm.DB, f ListFilter) ([]studentModel.StudentModel, int64, error) {
	q := db.WithContext(ctx).Model(&studentModel.StudentModel{})
	if f.ClubIDs != nil {
		q = q.Where("student_club_id IN ?", f.ClubIDs)
	}
	if f.CategoryID != nil {
		q = q.Where("student_category_id = ?", *f.CategoryID)
	}
	switch {
	case f.GroupID != nil:
		q = q.Where("student_group_id = ?", *f.GroupID)
	case f.Unassigned:
		q = q.Where("student_group_id IS NULL")
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(student_first_name) LIKE ? OR LOWER(student_last_name) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count students")
	}

	var rows []studentModel.StudentModel
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("student_last_name ASC, student_first_name ASC, student_id ASC").
		Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list students")
	}
	return rows, total, nil
}

func Get(ctx context.Context, db *gorm.DB, id uuid.UUID) (*studentModel.StudentModel, error) {
	var st studentModel.StudentModel
	if err := db.WithContext(ctx).Where("student_id = ?", id).Take(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, errors.Wrap(err, "load student")
	}
	return &st, nil
}

// UpdateProfile: hanya kolom profil; club/category/fauj tidak boleh lewat sini
// (pindah fauj lewat transfer).
func UpdateProfile(ctx context.Context, db *gorm.DB, id uuid.UUID, patch map[string]any) (*studentModel.StudentModel, error) {
	for _, k := range []string{"student_id", "student_club_id", "student_category_id", "student_group_id"} {
		delete(patch, k)
	}
	var out *studentModel.StudentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(patch) > 0 {
			if err := tx.Model(st).Updates(patch).Error; err != nil {
				return errors.Wrap(err, "update student")
			}
		}
		out, err = Get(ctx, tx, id)
		return err
	})
	return out, err
}

// Delete: soft delete. Fauj asal boleh jadi kosong (fauj kosong sah & bisa dihapus).
func Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (*studentModel.StudentModel, error) {
	var st *studentModel.StudentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if st, err = Get(ctx, tx, id); err != nil {
			return err
		}
		if err := groupService.LockScope(ctx, tx, st.StudentClubID); err != nil &&
			!errors.Is(err, groupService.ErrClubNotFound) {
			return err
		}
		return errors.Wrap(tx.Delete(st).Error, "delete student")
	})
	return st, err
}
