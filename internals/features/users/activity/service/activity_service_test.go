package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"hifzku_backend/internals/databases/dbtest"
	activityModel "hifzku_backend/internals/features/users/activity/model"
)

func TestGormSinkRecord(t *testing.T) {
	db := dbtest.Open(t)
	actor := uuid.New()
	subject := uuid.New()

	NewGormSink(db).Record(context.Background(), Entry{
		ActorID:     &actor,
		Action:      "merge",
		SubjectType: "group",
		SubjectID:   &subject,
		Properties:  datatypes.JSONMap{"moved": 3},
	})

	var rows []activityModel.ActivityLogModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "merge", rows[0].ActivityLogAction)
	require.NotNil(t, rows[0].ActivityLogActorID)
	assert.Equal(t, actor, *rows[0].ActivityLogActorID)

	var props map[string]any
	require.NoError(t, json.Unmarshal(rows[0].ActivityLogProperties, &props))
	assert.EqualValues(t, 3, props["moved"])
}

func TestGormSinkSwallowsFailures(t *testing.T) {
	db := dbtest.Open(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.NotPanics(t, func() {
		NewGormSink(db).Record(context.Background(), Entry{Action: "delete", SubjectType: "group"})
	})
}

func TestPrune(t *testing.T) {
	db := dbtest.Open(t)
	old := activityModel.ActivityLogModel{
		ActivityLogAction:      "create",
		ActivityLogSubjectType: "group",
		ActivityLogCreatedAt:   time.Now().UTC().AddDate(0, 0, -400),
	}
	fresh := activityModel.ActivityLogModel{
		ActivityLogAction:      "create",
		ActivityLogSubjectType: "group",
	}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&fresh).Error)

	n, err := Prune(context.Background(), db, 180)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var left int64
	require.NoError(t, db.Model(&activityModel.ActivityLogModel{}).Count(&left).Error)
	assert.EqualValues(t, 1, left)

	n, err = Prune(context.Background(), db, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}
