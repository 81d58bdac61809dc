package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hifzku_backend/internals/databases/dbtest"
	groupModel "hifzku_backend/internals/features/groups/groups/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

type transferFixture struct {
	db      *gorm.DB
	scope   dbtest.Scope
	a, b, c groupModel.GroupModel
	inA     []studentModel.StudentModel
	inB     []studentModel.StudentModel
	inC     []studentModel.StudentModel
}

// three groups: A(3), B(1), C(2)
func newTransferFixture(t *testing.T) transferFixture {
	t.Helper()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	f := transferFixture{db: db, scope: sc}
	f.a = dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
	f.b = dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
	f.c = dbtest.AddGroup(t, db, sc, Alphabet[2], 3)
	f.inA = dbtest.AddStudents(t, db, sc, 3, &f.a.GroupID)
	f.inB = dbtest.AddStudents(t, db, sc, 1, &f.b.GroupID)
	f.inC = dbtest.AddStudents(t, db, sc, 2, &f.c.GroupID)
	return f
}

func (f transferFixture) counts(t *testing.T) [3]int64 {
	return [3]int64{
		dbtest.CountInGroup(t, f.db, f.a.GroupID),
		dbtest.CountInGroup(t, f.db, f.b.GroupID),
		dbtest.CountInGroup(t, f.db, f.c.GroupID),
	}
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves one student and touches no other group", func(t *testing.T) {
		f := newTransferFixture(t)
		res, err := Transfer(ctx, f.db, f.inA[0].StudentID, &f.b.GroupID)
		require.NoError(t, err)
		assert.False(t, res.NoOp)
		require.NotNil(t, res.Student.StudentGroupID)
		assert.Equal(t, f.b.GroupID, *res.Student.StudentGroupID)
		assert.Equal(t, [3]int64{2, 2, 2}, f.counts(t))
	})

	t.Run("same group is a no-op even for the last member", func(t *testing.T) {
		f := newTransferFixture(t)
		res, err := Transfer(ctx, f.db, f.inB[0].StudentID, &f.b.GroupID)
		require.NoError(t, err)
		assert.True(t, res.NoOp)
		assert.Equal(t, [3]int64{3, 1, 2}, f.counts(t))
	})

	t.Run("last member cannot leave", func(t *testing.T) {
		f := newTransferFixture(t)
		_, err := Transfer(ctx, f.db, f.inB[0].StudentID, &f.a.GroupID)
		re := requireRule(t, err, CodeWouldEmptyGroup)
		assert.Equal(t, Alphabet[1], re.GroupName)
		assert.Equal(t, [3]int64{3, 1, 2}, f.counts(t))
	})

	t.Run("ungrouping is not allowed while groups exist", func(t *testing.T) {
		f := newTransferFixture(t)
		_, err := Transfer(ctx, f.db, f.inA[0].StudentID, nil)
		requireRule(t, err, CodeUngroupNotAllowed)
		assert.Equal(t, [3]int64{3, 1, 2}, f.counts(t))
	})

	t.Run("target in another scope", func(t *testing.T) {
		f := newTransferFixture(t)
		other := dbtest.NewScope(t, f.db)
		foreign := dbtest.AddGroup(t, f.db, other, Alphabet[0], 1)

		_, err := Transfer(ctx, f.db, f.inA[0].StudentID, &foreign.GroupID)
		requireRule(t, err, CodeScopeMismatch)
	})

	t.Run("inactive target", func(t *testing.T) {
		f := newTransferFixture(t)
		require.NoError(t, f.db.Model(&groupModel.GroupModel{}).
			Where("group_id = ?", f.c.GroupID).
			Update("group_is_active", false).Error)

		_, err := Transfer(ctx, f.db, f.inA[0].StudentID, &f.c.GroupID)
		requireRule(t, err, CodeGroupInactive)
	})

	t.Run("unknown student or group", func(t *testing.T) {
		f := newTransferFixture(t)
		_, err := Transfer(ctx, f.db, uuid.New(), &f.a.GroupID)
		assert.ErrorIs(t, err, ErrStudentNotFound)

		missing := uuid.New()
		_, err = Transfer(ctx, f.db, f.inA[0].StudentID, &missing)
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})

	t.Run("ungrouped student may be ungrouped when scope has no groups", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		s := dbtest.AddStudents(t, db, sc, 1, nil)

		res, err := Transfer(ctx, db, s[0].StudentID, nil)
		require.NoError(t, err)
		assert.True(t, res.NoOp)
	})
}

func TestBulkTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves from several sources in one update", func(t *testing.T) {
		f := newTransferFixture(t)
		res, err := BulkTransfer(ctx, f.db,
			[]uuid.UUID{f.inA[0].StudentID, f.inA[1].StudentID, f.inC[0].StudentID},
			&f.b.GroupID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, res.Moved)
		assert.Equal(t, [3]int64{1, 4, 1}, f.counts(t))
	})

	t.Run("all or nothing when one source would be emptied", func(t *testing.T) {
		f := newTransferFixture(t)
		_, err := BulkTransfer(ctx, f.db,
			[]uuid.UUID{f.inA[0].StudentID, f.inC[0].StudentID, f.inC[1].StudentID},
			&f.b.GroupID)
		re := requireRule(t, err, CodeWouldEmptyGroup)
		assert.Equal(t, Alphabet[2], re.GroupName)
		assert.Equal(t, [3]int64{3, 1, 2}, f.counts(t))
	})

	t.Run("students already in target are ignored", func(t *testing.T) {
		f := newTransferFixture(t)
		res, err := BulkTransfer(ctx, f.db,
			[]uuid.UUID{f.inB[0].StudentID, f.inA[0].StudentID, f.inA[0].StudentID},
			&f.b.GroupID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.Moved)
		assert.Equal(t, [3]int64{2, 2, 2}, f.counts(t))
	})

	t.Run("null target rejected while groups exist", func(t *testing.T) {
		f := newTransferFixture(t)
		_, err := BulkTransfer(ctx, f.db, []uuid.UUID{f.inA[0].StudentID}, nil)
		requireRule(t, err, CodeUngroupNotAllowed)
		assert.Equal(t, [3]int64{3, 1, 2}, f.counts(t))
	})

	t.Run("unknown student aborts everything", func(t *testing.T) {
		f := newTransferFixture(t)
		_, err := BulkTransfer(ctx, f.db, []uuid.UUID{f.inA[0].StudentID, uuid.New()}, &f.b.GroupID)
		assert.ErrorIs(t, err, ErrStudentNotFound)
		assert.Equal(t, [3]int64{3, 1, 2}, f.counts(t))
	})

	t.Run("students from another scope", func(t *testing.T) {
		f := newTransferFixture(t)
		other := dbtest.NewScope(t, f.db)
		stranger := dbtest.AddStudents(t, f.db, other, 1, nil)

		_, err := BulkTransfer(ctx, f.db, []uuid.UUID{f.inA[0].StudentID, stranger[0].StudentID}, &f.b.GroupID)
		requireRule(t, err, CodeScopeMismatch)
	})

	t.Run("unassigned students join a group", func(t *testing.T) {
		f := newTransferFixture(t)
		loose := dbtest.AddStudents(t, f.db, f.scope, 2, nil)
		res, err := BulkTransfer(ctx, f.db, []uuid.UUID{loose[0].StudentID, loose[1].StudentID}, &f.b.GroupID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.Moved)
		assert.Equal(t, [3]int64{3, 3, 2}, f.counts(t))
	})
}
