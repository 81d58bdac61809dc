package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hifzku_backend/internals/databases/dbtest"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

func newcomer(sc dbtest.Scope) *studentModel.StudentModel {
	return &studentModel.StudentModel{
		StudentClubID:     sc.Club.ClubID,
		StudentCategoryID: sc.Category.CategoryID,
		StudentFirstName:  "New",
		StudentLastName:   "Comer",
		StudentIsActive:   true,
	}
}

func TestPlaceNewStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("no groups keeps the student unassigned", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		st := newcomer(sc)

		_, err := inTx(t, db, func(tx *gorm.DB) (struct{}, error) {
			return struct{}{}, PlaceNewStudent(ctx, tx, st)
		})
		require.NoError(t, err)
		assert.Nil(t, st.StudentGroupID)
	})

	t.Run("auto assign picks the smallest group", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
		b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
		c := dbtest.AddGroup(t, db, sc, Alphabet[2], 3)
		dbtest.AddStudents(t, db, sc, 3, &a.GroupID)
		dbtest.AddStudents(t, db, sc, 2, &b.GroupID)
		dbtest.AddStudents(t, db, sc, 2, &c.GroupID)

		st := newcomer(sc)
		_, err := inTx(t, db, func(tx *gorm.DB) (struct{}, error) {
			return struct{}{}, PlaceNewStudent(ctx, tx, st)
		})
		require.NoError(t, err)
		require.NotNil(t, st.StudentGroupID)
		// B dan C seri, B lebih dulu
		assert.Equal(t, b.GroupID, *st.StudentGroupID)
	})

	t.Run("explicit group in scope", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		a := dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
		b := dbtest.AddGroup(t, db, sc, Alphabet[1], 2)
		dbtest.AddStudents(t, db, sc, 1, &a.GroupID)

		st := newcomer(sc)
		st.StudentGroupID = dbtest.Ptr(a.GroupID)
		_, err := inTx(t, db, func(tx *gorm.DB) (struct{}, error) {
			return struct{}{}, PlaceNewStudent(ctx, tx, st)
		})
		require.NoError(t, err)
		assert.Equal(t, a.GroupID, *st.StudentGroupID)
		assert.NotEqual(t, b.GroupID, *st.StudentGroupID)
	})

	t.Run("explicit group from another scope", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		other := dbtest.NewScope(t, db)
		dbtest.AddGroup(t, db, sc, Alphabet[0], 1)
		foreign := dbtest.AddGroup(t, db, other, Alphabet[0], 1)

		st := newcomer(sc)
		st.StudentGroupID = dbtest.Ptr(foreign.GroupID)
		_, err := inTx(t, db, func(tx *gorm.DB) (struct{}, error) {
			return struct{}{}, PlaceNewStudent(ctx, tx, st)
		})
		requireRule(t, err, CodeScopeMismatch)
	})

	t.Run("unknown group", func(t *testing.T) {
		db := dbtest.Open(t)
		sc := dbtest.NewScope(t, db)
		st := newcomer(sc)
		st.StudentGroupID = dbtest.Ptr(sc.Club.ClubID)
		_, err := inTx(t, db, func(tx *gorm.DB) (struct{}, error) {
			return struct{}{}, PlaceNewStudent(ctx, tx, st)
		})
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})
}
