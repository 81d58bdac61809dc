// Package dbtest membuka SQLite in-memory dengan skema yang sama (via AutoMigrate) untuk test service.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	categoryModel "hifzku_backend/internals/features/clubs/categories/model"
	clubModel "hifzku_backend/internals/features/clubs/clubs/model"
	subjectModel "hifzku_backend/internals/features/clubs/subjects/model"
	groupModel "hifzku_backend/internals/features/groups/groups/model"
	attendanceModel "hifzku_backend/internals/features/programs/attendances/model"
	programModel "hifzku_backend/internals/features/programs/programs/model"
	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
	activityModel "hifzku_backend/internals/features/users/activity/model"
	authModel "hifzku_backend/internals/features/users/auth/model"
	userModel "hifzku_backend/internals/features/users/user/model"
)

var seq int64

// Models: semua model yang dimigrasikan di test.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.TokenBlacklist{},
		&activityModel.ActivityLogModel{},
		&clubModel.ClubModel{},
		&clubModel.ClubUserModel{},
		&categoryModel.CategoryModel{},
		&subjectModel.SubjectModel{},
		&groupModel.GroupModel{},
		&studentModel.StudentModel{},
		&programModel.ProgramModel{},
		&sessionModel.ProgramSessionModel{},
		&attendanceModel.AttendanceModel{},
	}
}

// Open: satu database terpisah per pemanggilan (nama unik, shared cache agar semua koneksi pool melihat data yang sama).
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	n := atomic.AddInt64(&seq, 1)
	dsn := fmt.Sprintf("file:hifzku_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(0)", n)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
