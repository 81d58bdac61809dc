package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hifzku_backend/internals/databases/dbtest"
	groupModel "hifzku_backend/internals/features/groups/groups/model"
	attendanceModel "hifzku_backend/internals/features/programs/attendances/model"
	programModel "hifzku_backend/internals/features/programs/programs/model"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

func inTx[T any](t *testing.T, db *gorm.DB, fn func(tx *gorm.DB) (T, error)) (T, error) {
	t.Helper()
	var out T
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = fn(tx)
		return err
	})
	return out, err
}

func requireRule(t *testing.T, err error, code string) *GroupRuleError {
	t.Helper()
	re, ok := AsRuleError(err)
	require.Truef(t, ok, "expected GroupRuleError, got %v", err)
	assert.Equal(t, code, re.Code)
	return re
}

func TestCanCreateNewGroup(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		ungrouped  int
		groupSizes []int
		want       bool
	}{
		{name: "no groups, no students", want: false},
		{name: "no groups, one student", ungrouped: 1, want: false},
		{name: "no groups, two students", ungrouped: 2, want: true},
		{name: "every group has one student", groupSizes: []int{1, 1}, want: false},
		{name: "one group can donate", groupSizes: []int{2, 1}, want: true},
		{name: "empty groups cannot donate", groupSizes: []int{1, 0, 1}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := dbtest.Open(t)
			sc := dbtest.NewScope(t, db)
			dbtest.AddStudents(t, db, sc, tt.ungrouped, nil)
			for i, size := range tt.groupSizes {
				g := dbtest.AddGroup(t, db, sc, Alphabet[i], i+1)
				dbtest.AddStudents(t, db, sc, size, &g.GroupID)
			}

			got, err := CanCreateNewGroup(ctx, db, sc.Club.ClubID, sc.Category.CategoryID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute_FirstGroupsSplitEvenly(t *testing.T) {
	ctx := context.Background()

	for _, n := range []int{2, 3, 7, 10} {
		n := n
		t.Run(fmt.Sprintf("%d students", n), func(t *testing.T) {
			db := dbtest.Open(t)
			sc := dbtest.NewScope(t, db)
			students := dbtest.AddStudents(t, db, sc, n, nil)

			res, err := inTx(t, db, func(tx *gorm.DB) (CreateResult, error) {
				return Execute(ctx, tx, sc.Club.ClubID, sc.Category.CategoryID, nil)
			})
			require.NoError(t, err)
			require.True(t, res.FirstGroups)
			require.Len(t, res.Groups, 2)
			assert.Equal(t, Alphabet[0], res.Groups[0].GroupName)
			assert.Equal(t, Alphabet[1], res.Groups[1].GroupName)
			assert.Equal(t, 1, res.Groups[0].GroupOrder)
			assert.Equal(t, 2, res.Groups[1].GroupOrder)

			a := dbtest.CountInGroup(t, db, res.Groups[0].GroupID)
			b := dbtest.CountInGroup(t, db, res.Groups[1].GroupID)
			assert.EqualValues(t, n, a+b)
			assert.LessOrEqual(t, a-b, int64(1))
			assert.GreaterOrEqual(t, a-b, int64(0))

			// urutan deterministik: yang paling awal terdaftar masuk label pertama
			var earliest studentModel.StudentModel
			require.NoError(t, db.First(&earliest, "student_id = ?", students[0].StudentID).Error)
			require.NotNil(t, earliest.StudentGroupID)
			assert.Equal(t, res.Groups[0].GroupID, *earliest.StudentGroupID)
		})
	}
}

func TestCreate_RejectsWhenNoStudentCanBeSpared(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	dbtest.AddStudents(t, db, sc, 1, nil)

	_, err := inTx(t, db, func(tx *gorm.DB) (CreateResult, error) {
		return Create(ctx, tx, sc.Club.ClubID, sc.Category.CategoryID, nil, nil)
	})
	requireRule(t, err, CodeInsufficientStudents)
	assert.EqualValues(t, 0, dbtest.CountActiveGroups(t, db, sc))
}

func TestCreate_NextGroupWithSelectedStudents(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
	b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
	inA := dbtest.AddStudents(t, db, sc, 3, &a.GroupID)
	dbtest.AddStudents(t, db, sc, 2, &b.GroupID)

	res, err := inTx(t, db, func(tx *gorm.DB) (CreateResult, error) {
		return Create(ctx, tx, sc.Club.ClubID, sc.Category.CategoryID, nil,
			[]uuid.UUID{inA[0].StudentID, inA[1].StudentID})
	})
	require.NoError(t, err)
	require.False(t, res.FirstGroups)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, Alphabet[2], res.Groups[0].GroupName)
	assert.Equal(t, 3, res.Groups[0].GroupOrder)
	assert.Equal(t, 2, res.Assigned)

	assert.EqualValues(t, 1, dbtest.CountInGroup(t, db, a.GroupID))
	assert.EqualValues(t, 2, dbtest.CountInGroup(t, db, b.GroupID))
	assert.EqualValues(t, 2, dbtest.CountInGroup(t, db, res.Groups[0].GroupID))
}

func TestCreate_SelectedStudentsCannotEmptySource(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
	b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
	dbtest.AddStudents(t, db, sc, 3, &a.GroupID)
	inB := dbtest.AddStudents(t, db, sc, 1, &b.GroupID)

	_, err := inTx(t, db, func(tx *gorm.DB) (CreateResult, error) {
		return Create(ctx, tx, sc.Club.ClubID, sc.Category.CategoryID, nil, []uuid.UUID{inB[0].StudentID})
	})
	re := requireRule(t, err, CodeWouldEmptyGroup)
	assert.Equal(t, Alphabet[1], re.GroupName)

	// transaksi di-rollback: fauj baru tidak ikut tersimpan
	assert.EqualValues(t, 2, dbtest.CountActiveGroups(t, db, sc))
	assert.EqualValues(t, 1, dbtest.CountInGroup(t, db, b.GroupID))
}

func TestExecute_CustomName(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
	dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
	dbtest.AddStudents(t, db, sc, 2, &a.GroupID)

	res, err := Execute(ctx, db, sc.Club.ClubID, sc.Category.CategoryID, dbtest.Ptr("  Advanced  "))
	require.NoError(t, err)
	assert.Equal(t, "Advanced", res.Groups[0].GroupName)
	assert.Equal(t, len(Alphabet)+1, res.Groups[0].GroupOrder)

	_, err = Execute(ctx, db, sc.Club.ClubID, sc.Category.CategoryID, dbtest.Ptr("Advanced"))
	requireRule(t, err, CodeNameTaken)
}

func TestExecute_ReusesFreedLabel(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)

	groups := make([]groupModel.GroupModel, 4)
	for i := range groups {
		groups[i] = dbtest.AddGroup(t, db, sc, Alphabet[i], i+1)
		dbtest.AddStudents(t, db, sc, 2, &groups[i].GroupID)
	}

	// fauj ke-2 dilebur ke fauj pertama → label ke-2 bebas kembali
	_, err := Merge(ctx, db, groups[1].GroupID, groups[0].GroupID)
	require.NoError(t, err)

	res, err := Execute(ctx, db, sc.Club.ClubID, sc.Category.CategoryID, nil)
	require.NoError(t, err)
	assert.Equal(t, Alphabet[1], res.Groups[0].GroupName)
	assert.Equal(t, 2, res.Groups[0].GroupOrder)

	res, err = Execute(ctx, db, sc.Club.ClubID, sc.Category.CategoryID, nil)
	require.NoError(t, err)
	assert.Equal(t, Alphabet[4], res.Groups[0].GroupName)
}

func TestNextFreeLabel_Exhausted(t *testing.T) {
	_, _, ok := NextFreeLabel(Alphabet)
	assert.False(t, ok)

	name, order, ok := NextFreeLabel([]string{Alphabet[0], Alphabet[2]})
	require.True(t, ok)
	assert.Equal(t, Alphabet[1], name)
	assert.Equal(t, 2, order)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("group with students is rejected without mutation", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
		b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
		dbtest.AddStudents(t, db, sc, 2, &a.GroupID)
		dbtest.AddStudents(t, db, sc, 3, &b.GroupID)

		_, err := Delete(ctx, db, a.GroupID)
		re := requireRule(t, err, CodeGroupNotEmpty)
		assert.Equal(t, Alphabet[0], re.GroupName)
		assert.EqualValues(t, 2, dbtest.CountActiveGroups(t, db, sc))
		assert.EqualValues(t, 2, dbtest.CountInGroup(t, db, a.GroupID))
		assert.EqualValues(t, 3, dbtest.CountInGroup(t, db, b.GroupID))
	})

	t.Run("deleting one of two groups ungroups the scope", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
		b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
		dbtest.AddStudents(t, db, sc, 3, &a.GroupID)

		res, err := Delete(ctx, db, b.GroupID)
		require.NoError(t, err)
		assert.True(t, res.DeletedBoth)
		assert.EqualValues(t, 3, res.Unassigned)
		assert.ElementsMatch(t, []uuid.UUID{a.GroupID, b.GroupID}, res.DeletedGroupIDs)
		assert.EqualValues(t, 0, dbtest.CountActiveGroups(t, db, sc))

		var grouped int64
		require.NoError(t, db.Model(&studentModel.StudentModel{}).
			Where("student_group_id IS NOT NULL").Count(&grouped).Error)
		assert.Zero(t, grouped)
	})

	t.Run("with three groups only the target goes", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
		b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
		c := dbtest.AddGroup(t, db, sc, Alphabet[2], 3)
		dbtest.AddStudents(t, db, sc, 2, &a.GroupID)
		dbtest.AddStudents(t, db, sc, 2, &b.GroupID)

		res, err := Delete(ctx, db, c.GroupID)
		require.NoError(t, err)
		assert.False(t, res.DeletedBoth)
		assert.Equal(t, []uuid.UUID{c.GroupID}, res.DeletedGroupIDs)
		assert.EqualValues(t, 2, dbtest.CountActiveGroups(t, db, sc))
		assert.EqualValues(t, 2, dbtest.CountInGroup(t, db, a.GroupID))
	})

	t.Run("unknown group", func(t *testing.T) {
		db := dbtest.Open(t)
		_, err := Delete(ctx, db, uuid.New())
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})
}

func TestMerge(t *testing.T) {
	ctx := context.Background()

	t.Run("merging the only two groups leaves zero groups", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
		b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
		dbtest.AddStudents(t, db, sc, 2, &a.GroupID)
		dbtest.AddStudents(t, db, sc, 3, &b.GroupID)

		res, err := Merge(ctx, db, a.GroupID, b.GroupID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.Moved)
		assert.True(t, res.DeletedBoth)
		assert.EqualValues(t, 0, dbtest.CountActiveGroups(t, db, sc))

		var grouped int64
		require.NoError(t, db.Model(&studentModel.StudentModel{}).
			Where("student_group_id IS NOT NULL").Count(&grouped).Error)
		assert.Zero(t, grouped)
	})

	t.Run("merging with three groups keeps the target", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
		b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
		c := dbtest.AddGroup(t, db, sc, Alphabet[2], 3)
		moved := dbtest.AddStudents(t, db, sc, 2, &a.GroupID)
		dbtest.AddStudents(t, db, sc, 3, &b.GroupID)
		dbtest.AddStudents(t, db, sc, 4, &c.GroupID)

		res, err := Merge(ctx, db, a.GroupID, b.GroupID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.Moved)
		assert.False(t, res.DeletedBoth)
		assert.EqualValues(t, 2, dbtest.CountActiveGroups(t, db, sc))
		assert.EqualValues(t, 5, dbtest.CountInGroup(t, db, b.GroupID))
		assert.EqualValues(t, 4, dbtest.CountInGroup(t, db, c.GroupID))

		for _, s := range moved {
			var got studentModel.StudentModel
			require.NoError(t, db.First(&got, "student_id = ?", s.StudentID).Error)
			require.NotNil(t, got.StudentGroupID)
			assert.Equal(t, b.GroupID, *got.StudentGroupID)
		}

		var src groupModel.GroupModel
		require.NoError(t, db.Unscoped().First(&src, "group_id = ?", a.GroupID).Error)
		assert.True(t, src.GroupDeletedAt.Valid)
	})

	t.Run("cross scope merge is rejected", func(t *testing.T) {
		db := dbtest.Open(t)
		sc1 := dbtest.NewScope(t, db)
		sc2 := dbtest.NewScope(t, db)
		a := dbtest.AddGroup(t, db, sc1, Alphabet[0], 1)
		b := dbtest.AddGroup(t, db, sc2, Alphabet[0], 1)

		_, err := Merge(ctx, db, a.GroupID, b.GroupID)
		requireRule(t, err, CodeScopeMismatch)
	})

	t.Run("same group", func(t *testing.T) {
		db := dbtest.Open(t)
		id := uuid.New()
		_, err := Merge(ctx, db, id, id)
		requireRule(t, err, CodeSameGroup)
	})
}

func TestNeverExactlyOneActiveGroup(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	dbtest.AddStudents(t, db, sc, 6, nil)

	check := func(step string) {
		n := dbtest.CountActiveGroups(t, db, sc)
		assert.NotEqualValues(t, 1, n, "after %s", step)
	}

	first, err := Create(ctx, db, sc.Club.ClubID, sc.Category.CategoryID, nil, nil)
	require.NoError(t, err)
	check("first groups")

	third, err := Create(ctx, db, sc.Club.ClubID, sc.Category.CategoryID, nil, nil)
	require.NoError(t, err)
	check("third group")

	_, err = Delete(ctx, db, third.Groups[0].GroupID)
	require.NoError(t, err)
	check("delete empty third group")

	_, err = Delete(ctx, db, first.Groups[0].GroupID)
	requireRule(t, err, CodeGroupNotEmpty)
	check("rejected delete")

	_, err = Merge(ctx, db, first.Groups[0].GroupID, first.Groups[1].GroupID)
	require.NoError(t, err)
	check("merge last two groups")

	again, err := Create(ctx, db, sc.Club.ClubID, sc.Category.CategoryID, nil, nil)
	require.NoError(t, err)
	assert.True(t, again.FirstGroups)
	check("recreate first groups")
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
	b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)

	// alif+hamza terdekomposisi == "أ" setelah NFC
	_, err := Rename(ctx, db, b.GroupID, "\u0627\u0654")
	requireRule(t, err, CodeNameTaken)

	_, err = Rename(ctx, db, b.GroupID, "   ")
	requireRule(t, err, CodeNameInvalid)

	g, err := Rename(ctx, db, b.GroupID, "Juz Amma")
	require.NoError(t, err)
	assert.Equal(t, "Juz Amma", g.GroupName)
	assert.Equal(t, len(Alphabet)+1, g.GroupOrder)

	// label ke-2 bebas lagi: dipakai ulang dengan order-nya sendiri, fauj custom tetap di belakang
	re, err := Execute(ctx, db, sc.Club.ClubID, sc.Category.CategoryID, nil)
	require.NoError(t, err)
	assert.Equal(t, Alphabet[1], re.Groups[0].GroupName)
	assert.Equal(t, 2, re.Groups[0].GroupOrder)

	list, err := ListWithCounts(ctx, db, sc.Club.ClubID, sc.Category.CategoryID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{Alphabet[0], Alphabet[1], "Juz Amma"},
		[]string{list[0].GroupName, list[1].GroupName, list[2].GroupName})

	// kembali ke label alfabet → order label itu
	g, err = Rename(ctx, db, b.GroupID, Alphabet[3])
	require.NoError(t, err)
	assert.Equal(t, 4, g.GroupOrder)
}

func TestSoftAndForceDelete_References(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	subject := dbtest.NewSubject(t, db)

	a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
	b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
	c := dbtest.AddGroup(t, db, sc, Alphabet[2], 3)
	dbtest.AddStudents(t, db, sc, 2, &a.GroupID)
	dbtest.AddStudents(t, db, sc, 2, &b.GroupID)

	program := programModel.ProgramModel{
		ProgramClubID:     sc.Club.ClubID,
		ProgramCategoryID: sc.Category.CategoryID,
		ProgramGroupID:    &c.GroupID,
		ProgramSubjectID:  subject.SubjectID,
		ProgramDaysOfWeek: programModel.WeekdaySet{1},
		ProgramIsActive:   true,
	}
	require.NoError(t, db.Create(&program).Error)

	att := attendanceModel.AttendanceModel{
		AttendanceSessionID: uuid.New(),
		AttendanceStudentID: uuid.New(),
		AttendanceGroupID:   &c.GroupID,
		AttendanceStatus:    attendanceModel.AttendancePresent,
	}
	require.NoError(t, db.Create(&att).Error)

	// force delete menolak fauj yang belum di-soft-delete
	requireRule(t, ForceDelete(ctx, db, c.GroupID), CodeGroupStillActive)
	assert.ErrorIs(t, ForceDelete(ctx, db, uuid.New()), ErrGroupNotFound)

	_, err := Delete(ctx, db, c.GroupID)
	require.NoError(t, err)

	var kept attendanceModel.AttendanceModel
	require.NoError(t, db.First(&kept, "attendance_id = ?", att.AttendanceID).Error)
	require.NotNil(t, kept.AttendanceGroupID, "soft delete keeps the attendance snapshot")
	assert.Equal(t, c.GroupID, *kept.AttendanceGroupID)

	require.NoError(t, ForceDelete(ctx, db, c.GroupID))

	var p programModel.ProgramModel
	require.NoError(t, db.First(&p, "program_id = ?", program.ProgramID).Error)
	assert.Nil(t, p.ProgramGroupID)

	// struct baru: GORM tidak meng-nil-kan pointer lama saat kolom NULL
	var after attendanceModel.AttendanceModel
	require.NoError(t, db.First(&after, "attendance_id = ?", att.AttendanceID).Error)
	assert.Nil(t, after.AttendanceGroupID)

	var gone int64
	require.NoError(t, db.Unscoped().Model(&groupModel.GroupModel{}).
		Where("group_id = ?", c.GroupID).Count(&gone).Error)
	assert.Zero(t, gone)
}

func TestListWithCounts(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
	a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
	dbtest.AddStudents(t, db, sc, 3, &a.GroupID)
	dbtest.AddStudents(t, db, sc, 1, &b.GroupID)

	list, err := ListWithCounts(ctx, db, sc.Club.ClubID, sc.Category.CategoryID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.GroupID, list[0].GroupID)
	assert.EqualValues(t, 3, list[0].StudentsCount)
	assert.Equal(t, b.GroupID, list[1].GroupID)
	assert.EqualValues(t, 1, list[1].StudentsCount)
}
