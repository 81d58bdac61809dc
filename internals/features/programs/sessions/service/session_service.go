package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	"hifzku_backend/internals/helpers/dbtime"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStateError: transisi / edit tidak sah untuk status sesi saat ini.
type SessionStateError struct {
	Status sessionModel.SessionStatus
	Action string
}

func (e *SessionStateError) Error() string {
	return fmt.Sprintf("cannot %s a %s session", e.Action, e.Status)
}

func IsStateError(err error) bool {
	var se *SessionStateError
	return errors.As(err, &se)
}

// EnsureEditable: satu-satunya aturan edit tanggal/jam: hanya selama scheduled.
func EnsureEditable(s *sessionModel.ProgramSessionModel) error {
	if !s.IsScheduled() {
		return &SessionStateError{Status: s.ProgramSessionStatus, Action: "edit"}
	}
	return nil
}

// LoadForUpdate mengunci baris sesi.
func LoadForUpdate(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*sessionModel.ProgramSessionModel, error) {
	var s sessionModel.ProgramSessionModel
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("program_session_id = ?", sessionID).
		Take(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "load session")
	}
	return &s, nil
}

// Complete: scheduled → completed. Sudah completed = tidak berubah; cancelled ditolak.
func Complete(ctx context.Context, tx *gorm.DB, s *sessionModel.ProgramSessionModel) error {
	switch s.ProgramSessionStatus {
	case sessionModel.SessionCompleted:
		return nil
	case sessionModel.SessionCancelled:
		return &SessionStateError{Status: s.ProgramSessionStatus, Action: "take attendance for"}
	}
	now := time.Now().UTC()
	if err := tx.WithContext(ctx).
		Model(&sessionModel.ProgramSessionModel{}).
		Where("program_session_id = ? AND program_session_status = ?", s.ProgramSessionID, sessionModel.SessionScheduled).
		Updates(map[string]any{
			"program_session_status":       sessionModel.SessionCompleted,
			"program_session_completed_at": now,
		}).Error; err != nil {
		return errors.Wrap(err, "complete session")
	}
	s.ProgramSessionStatus = sessionModel.SessionCompleted
	s.ProgramSessionCompletedAt = &now
	return nil
}

// Cancel: scheduled → cancelled.
func Cancel(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, reason *string) (*sessionModel.ProgramSessionModel, error) {
	s, err := LoadForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.IsScheduled() {
		return nil, &SessionStateError{Status: s.ProgramSessionStatus, Action: "cancel"}
	}

	var r *string
	if reason != nil && strings.TrimSpace(*reason) != "" {
		v := strings.TrimSpace(*reason)
		r = &v
	}
	now := time.Now().UTC()
	if err := tx.WithContext(ctx).
		Model(s).
		Updates(map[string]any{
			"program_session_status":        sessionModel.SessionCancelled,
			"program_session_cancel_reason": r,
			"program_session_cancelled_at":  now,
		}).Error; err != nil {
		return nil, errors.Wrap(err, "cancel session")
	}
	s.ProgramSessionStatus = sessionModel.SessionCancelled
	s.ProgramSessionCancelReason = r
	s.ProgramSessionCancelledAt = &now
	return s, nil
}

// UpdateInput: field nil = tidak diubah. ClearTimes mengosongkan jam mulai & selesai.
type UpdateInput struct {
	Date       *time.Time
	StartTime  *dbtime.Tod
	EndTime    *dbtime.Tod
	ClearTimes bool
}

// Update: ubah tanggal/jam sesi (hanya saat scheduled).
func Update(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in UpdateInput) (*sessionModel.ProgramSessionModel, error) {
	s, err := LoadForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := EnsureEditable(s); err != nil {
		return nil, err
	}

	if in.Date != nil {
		s.ProgramSessionDate = dbtime.DateOnly(*in.Date)
	}
	if in.ClearTimes {
		s.ProgramSessionStartTime, s.ProgramSessionEndTime = nil, nil
	}
	if in.StartTime != nil {
		s.ProgramSessionStartTime = in.StartTime
	}
	if in.EndTime != nil {
		s.ProgramSessionEndTime = in.EndTime
	}
	if err := ValidateTimes(s.ProgramSessionStartTime, s.ProgramSessionEndTime); err != nil {
		return nil, err
	}

	if err := tx.WithContext(ctx).
		Model(s).
		Select("program_session_date", "program_session_start_time", "program_session_end_time").
		Updates(s).Error; err != nil {
		return nil, errors.Wrap(err, "update session")
	}
	return s, nil
}

var ErrEndBeforeStart = errors.New("end_time must be after start_time")

// ValidateTimes: jika keduanya diisi, selesai harus setelah mulai.
func ValidateTimes(start, end *dbtime.Tod) error {
	if start != nil && end != nil && !start.Before(*end) {
		return ErrEndBeforeStart
	}
	return nil
}
