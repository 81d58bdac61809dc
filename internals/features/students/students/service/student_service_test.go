package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hifzku_backend/internals/databases/dbtest"
	groupService "hifzku_backend/internals/features/groups/groups/service"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)

	st := &studentModel.StudentModel{
		StudentClubID:     sc.Club.ClubID,
		StudentCategoryID: sc.Category.CategoryID,
		StudentFirstName:  "  Aisha ",
		StudentLastName:   "Rahman",
		StudentIsActive:   true,
	}
	require.NoError(t, Register(ctx, db, st))
	assert.Equal(t, "Aisha", st.StudentFirstName)
	assert.Nil(t, st.StudentGroupID, "scope tanpa fauj")

	a := dbtest.AddGroup(t, db, sc, groupService.Alphabet[0], 1)
	b := dbtest.AddGroup(t, db, sc, groupService.Alphabet[1], 2)
	dbtest.AddStudents(t, db, sc, 2, &a.GroupID)
	dbtest.AddStudents(t, db, sc, 1, &b.GroupID)

	next := &studentModel.StudentModel{
		StudentClubID:     sc.Club.ClubID,
		StudentCategoryID: sc.Category.CategoryID,
		StudentFirstName:  "Bilal",
		StudentLastName:   "Yusuf",
		StudentIsActive:   true,
	}
	require.NoError(t, Register(ctx, db, next))
	require.NotNil(t, next.StudentGroupID)
	assert.Equal(t, b.GroupID, *next.StudentGroupID)
	assert.EqualValues(t, 2, dbtest.CountInGroup(t, db, b.GroupID))
}

func TestRegister_RejectedLeavesNoRow(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	other := dbtest.NewScope(t, db)
	foreign := dbtest.AddGroup(t, db, other, groupService.Alphabet[0], 1)

	st := &studentModel.StudentModel{
		StudentClubID:     sc.Club.ClubID,
		StudentCategoryID: sc.Category.CategoryID,
		StudentGroupID:    dbtest.Ptr(foreign.GroupID),
		StudentFirstName:  "X",
		StudentLastName:   "Y",
	}
	err := Register(ctx, db, st)
	re, ok := groupService.AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, groupService.CodeScopeMismatch, re.Code)

	_, total, err := List(ctx, db, ListFilter{ClubIDs: []uuid.UUID{sc.Club.ClubID}})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	g := dbtest.AddGroup(t, db, sc, groupService.Alphabet[0], 1)
	grouped := dbtest.AddStudents(t, db, sc, 3, &g.GroupID)
	dbtest.AddStudents(t, db, sc, 2, nil)
	dbtest.AddStudents(t, db, dbtest.NewScope(t, db), 4, nil)

	tests := []struct {
		name string
		f    ListFilter
		want int64
	}{
		{"club", ListFilter{ClubIDs: []uuid.UUID{sc.Club.ClubID}}, 5},
		{"group", ListFilter{GroupID: &g.GroupID}, 3},
		{"unassigned in club", ListFilter{ClubIDs: []uuid.UUID{sc.Club.ClubID}, Unassigned: true}, 2},
		{"query", ListFilter{ClubIDs: []uuid.UUID{sc.Club.ClubID}, Query: "student01"}, 2},
		{"no clubs visible", ListFilter{ClubIDs: []uuid.UUID{}}, 0},
		{"all", ListFilter{}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := List(ctx, db, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}

	rows, total, err := List(ctx, db, ListFilter{GroupID: &g.GroupID, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 2)
	assert.Equal(t, grouped[0].StudentID, rows[0].StudentID)
}

func TestUpdateProfileAndDelete(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	g := dbtest.AddGroup(t, db, sc, groupService.Alphabet[0], 1)
	st := dbtest.AddStudents(t, db, sc, 1, &g.GroupID)[0]

	got, err := UpdateProfile(ctx, db, st.StudentID, map[string]any{
		"student_first_name": "Renamed",
		"student_group_id":   nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.StudentFirstName)
	require.NotNil(t, got.StudentGroupID, "fauj tidak ikut berubah")
	assert.Equal(t, g.GroupID, *got.StudentGroupID)

	_, err = UpdateProfile(ctx, db, uuid.New(), map[string]any{"student_first_name": "x"})
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = Delete(ctx, db, st.StudentID)
	require.NoError(t, err)
	_, err = Get(ctx, db, st.StudentID)
	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.Zero(t, dbtest.CountInGroup(t, db, g.GroupID))
}
