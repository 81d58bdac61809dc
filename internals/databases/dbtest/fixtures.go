package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	categoryModel "hifzku_backend/internals/features/clubs/categories/model"
	clubModel "hifzku_backend/internals/features/clubs/clubs/model"
	subjectModel "hifzku_backend/internals/features/clubs/subjects/model"
	groupModel "hifzku_backend/internals/features/groups/groups/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

// Scope = pasangan (club, category) siap pakai.
type Scope struct {
	Club     clubModel.ClubModel
	Category categoryModel.CategoryModel
}

func NewScope(t *testing.T, db *gorm.DB) Scope {
	t.Helper()

	n := atomic64()
	club := clubModel.ClubModel{ClubName: fmt.Sprintf("Club %d", n), ClubIsActive: true}
	require.NoError(t, db.Create(&club).Error)

	cat := categoryModel.CategoryModel{
		CategoryName:        fmt.Sprintf("cat_%d", n),
		CategoryDisplayName: fmt.Sprintf("Category %d", n),
		CategoryGender:      categoryModel.GenderMixed,
	}
	require.NoError(t, db.Create(&cat).Error)

	return Scope{Club: club, Category: cat}
}

func NewSubject(t *testing.T, db *gorm.DB) subjectModel.SubjectModel {
	t.Helper()
	s := subjectModel.SubjectModel{SubjectName: fmt.Sprintf("Hifz %d", atomic64())}
	require.NoError(t, db.Create(&s).Error)
	return s
}

// AddStudents membuat n siswa di scope; groupID nil = belum ber-fauj.
// enrolled_at bertambah satu hari per siswa agar urutan deterministik.
func AddStudents(t *testing.T, db *gorm.DB, sc Scope, n int, groupID *uuid.UUID) []studentModel.StudentModel {
	t.Helper()
	base := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)
	out := make([]studentModel.StudentModel, 0, n)
	for i := 0; i < n; i++ {
		s := studentModel.StudentModel{
			StudentClubID:     sc.Club.ClubID,
			StudentCategoryID: sc.Category.CategoryID,
			StudentGroupID:    groupID,
			StudentFirstName:  fmt.Sprintf("Student%02d", i),
			StudentLastName:   "Test",
			StudentEnrolledAt: base.AddDate(0, 0, i),
			StudentIsActive:   true,
		}
		require.NoError(t, db.Create(&s).Error)
		out = append(out, s)
	}
	return out
}

// AddGroup membuat fauj langsung (tanpa engine) untuk menyiapkan state test.
func AddGroup(t *testing.T, db *gorm.DB, sc Scope, name string, order int) groupModel.GroupModel {
	t.Helper()
	g := groupModel.GroupModel{
		GroupClubID:     sc.Club.ClubID,
		GroupCategoryID: sc.Category.CategoryID,
		GroupName:       name,
		GroupOrder:      order,
		GroupIsActive:   true,
	}
	require.NoError(t, db.Create(&g).Error)
	return g
}

// CountInGroup menghitung siswa hidup di fauj.
func CountInGroup(t *testing.T, db *gorm.DB, groupID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&studentModel.StudentModel{}).
		Where("student_group_id = ?", groupID).
		Count(&n).Error)
	return n
}

// CountActiveGroups menghitung fauj aktif (belum soft-delete) di scope.
func CountActiveGroups(t *testing.T, db *gorm.DB, sc Scope) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&groupModel.GroupModel{}).
		Where("group_club_id = ? AND group_category_id = ? AND group_is_active = ?",
			sc.Club.ClubID, sc.Category.CategoryID, true).
		Count(&n).Error)
	return n
}

func Ptr[T any](v T) *T { return &v }

func atomic64() int64 { return atomic.AddInt64(&seq, 1) }
