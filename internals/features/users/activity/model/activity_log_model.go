package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLogModel: jejak audit (siapa melakukan apa terhadap entitas apa).
type ActivityLogModel struct {
	ActivityLogID          uuid.UUID      `gorm:"column:activity_log_id;type:uuid;primaryKey" json:"activity_log_id"`
	ActivityLogActorID     *uuid.UUID     `gorm:"column:activity_log_actor_id;type:uuid" json:"activity_log_actor_id,omitempty"`
	ActivityLogAction      string         `gorm:"column:activity_log_action;type:varchar(60);not null" json:"activity_log_action"`
	ActivityLogSubjectType string         `gorm:"column:activity_log_subject_type;type:varchar(60);not null" json:"activity_log_subject_type"`
	ActivityLogSubjectID   *uuid.UUID     `gorm:"column:activity_log_subject_id;type:uuid" json:"activity_log_subject_id,omitempty"`
	ActivityLogProperties  datatypes.JSON `gorm:"column:activity_log_properties" json:"activity_log_properties,omitempty"`
	ActivityLogCreatedAt   time.Time      `gorm:"column:activity_log_created_at;autoCreateTime;index" json:"activity_log_created_at"`
}

func (ActivityLogModel) TableName() string { return "activity_logs" }

func (m *ActivityLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.ActivityLogID == uuid.Nil {
		m.ActivityLogID = uuid.New()
	}
	return nil
}
