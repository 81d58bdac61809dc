// file: internals/features/users/activity/service/activity_service.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activityModel "hifzku_backend/internals/features/users/activity/model"
)

// Entry: satu jejak audit. Properties bebas (diserialisasi ke JSON).
type Entry struct {
	ActorID     *uuid.UUID
	Action      string
	SubjectType string
	SubjectID   *uuid.UUID
	Properties  datatypes.JSONMap
}

// Sink hanya menerima tulisan; kegagalan tidak pernah dikembalikan ke pemanggil.
type Sink interface {
	Record(ctx context.Context, e Entry)
}

type GormSink struct {
	DB *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink { return &GormSink{DB: db} }

func (s *GormSink) Record(ctx context.Context, e Entry) {
	row, err := toModel(e)
	if err != nil {
		log.Printf("[ACTIVITY] encode %s/%s: %v", e.SubjectType, e.Action, err)
		return
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("[ACTIVITY] write %s/%s: %v", e.SubjectType, e.Action, err)
	}
}

func toModel(e Entry) (activityModel.ActivityLogModel, error) {
	row := activityModel.ActivityLogModel{
		ActivityLogActorID:     e.ActorID,
		ActivityLogAction:      e.Action,
		ActivityLogSubjectType: e.SubjectType,
		ActivityLogSubjectID:   e.SubjectID,
	}
	if len(e.Properties) > 0 {
		v, err := e.Properties.Value()
		if err != nil {
			return row, err
		}
		switch b := v.(type) {
		case string:
			row.ActivityLogProperties = datatypes.JSON(b)
		case []byte:
			row.ActivityLogProperties = datatypes.JSON(b)
		}
	}
	return row, nil
}

// NopSink dipakai bila audit dimatikan.
type NopSink struct{}

func (NopSink) Record(context.Context, Entry) {}

// Prune menghapus log yang lebih tua dari retentionDays.
func Prune(ctx context.Context, db *gorm.DB, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	res := db.WithContext(ctx).
		Where("activity_log_created_at < ?", cutoff).
		Delete(&activityModel.ActivityLogModel{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "prune activity logs")
	}
	return res.RowsAffected, nil
}
