// file: internals/features/programs/programs/service/generator.go
package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	programModel "hifzku_backend/internals/features/programs/programs/model"
	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	sessionService "hifzku_backend/internals/features/programs/sessions/service"
	"hifzku_backend/internals/helpers/dbtime"
)

// maksimal dua tahun
const maxScheduleDays = 730

const defaultBatchSize = 500

var (
	ErrProgramNotFound = errors.New("program not found")
	ErrInvalidRange    = errors.New("invalid date range")
)

// RangeError: rentang tanggal program tidak valid (end < start atau terlalu panjang).
type RangeError struct {
	Start, End time.Time
	Days       int
}

func (e *RangeError) Error() string {
	if e.End.Before(e.Start) {
		return fmt.Sprintf("invalid date range: start_date (%s) after end_date (%s)",
			e.Start.Format(dbtime.DateLayout), e.End.Format(dbtime.DateLayout))
	}
	return fmt.Sprintf("date range too long: %d days (max %d)", e.Days, maxScheduleDays)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// CustomSession: satu entri sesi yang ditulis tangan operator (atau hasil Preview).
type CustomSession struct {
	Date      time.Time   `json:"date"`
	StartTime *dbtime.Tod `json:"start_time"`
	EndTime   *dbtime.Tod `json:"end_time"`
}

type GenerateResult struct {
	Created   int `json:"created"`
	Deleted   int `json:"deleted"`
	Skipped   int `json:"skipped"`
	Preserved int `json:"preserved"`
}

// Generator: DB boleh berupa transaksi milik pemanggil.
type Generator struct {
	DB        *gorm.DB
	BatchSize int
}

func (g *Generator) batchSize() int {
	if g.BatchSize <= 0 {
		return defaultBatchSize
	}
	return g.BatchSize
}

// ValidateRange: end >= start dan panjang rentang <= maxScheduleDays.
func ValidateRange(start, end time.Time) error {
	s, e := dbtime.DateOnly(start), dbtime.DateOnly(end)
	if e.Before(s) {
		return &RangeError{Start: s, End: e}
	}
	days := int(e.Sub(s).Hours()/24) + 1
	if days > maxScheduleDays {
		return &RangeError{Start: s, End: e, Days: days}
	}
	return nil
}

// ExpandDates: semua tanggal di [start, end] yang harinya ada di days (00:00 UTC).
func ExpandDates(start, end time.Time, days programModel.WeekdaySet) []time.Time {
	s, e := dbtime.DateOnly(start), dbtime.DateOnly(end)
	if len(days) == 0 || e.Before(s) {
		return nil
	}
	var out []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if days.Contains(d.Weekday()) {
			out = append(out, d)
		}
	}
	return out
}

// Preview: daftar sesi yang akan dibuat Execute, untuk diedit operator sebelum disimpan.
func Preview(p *programModel.ProgramModel) ([]CustomSession, error) {
	if err := ValidateRange(p.ProgramStartDate, p.ProgramEndDate); err != nil {
		return nil, err
	}
	dates := ExpandDates(p.ProgramStartDate, p.ProgramEndDate, p.ProgramDaysOfWeek)
	out := make([]CustomSession, 0, len(dates))
	for _, d := range dates {
		out = append(out, CustomSession{
			Date:      d,
			StartTime: copyTod(p.ProgramDefaultStartTime),
			EndTime:   copyTod(p.ProgramDefaultEndTime),
		})
	}
	return out, nil
}

// BucketSessions: future jika session_date (00:00 zona aplikasi) >= now, selain itu old.
// Sesi "hari ini" menjadi old begitu lewat tengah malam.
func BucketSessions(sessions []sessionModel.ProgramSessionModel, now time.Time) (future, old []sessionModel.ProgramSessionModel) {
	loc := dbtime.AppLocation()
	future = make([]sessionModel.ProgramSessionModel, 0, len(sessions))
	old = make([]sessionModel.ProgramSessionModel, 0, len(sessions))
	for _, s := range sessions {
		d := s.ProgramSessionDate
		at := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		if !at.Before(now) {
			future = append(future, s)
		} else {
			old = append(old, s)
		}
	}
	return future, old
}

// Execute: hapus semua sesi scheduled milik program, pertahankan completed/cancelled,
// lalu buat satu sesi scheduled per tanggal hasil ekspansi yang belum punya sesi tersimpan.
func (g *Generator) Execute(ctx context.Context, program *programModel.ProgramModel) (GenerateResult, error) {
	if err := ValidateRange(program.ProgramStartDate, program.ProgramEndDate); err != nil {
		return GenerateResult{}, err
	}
	res, preserved, err := g.clear(ctx, program.ProgramID)
	if err != nil {
		return GenerateResult{}, err
	}

	dates := ExpandDates(program.ProgramStartDate, program.ProgramEndDate, program.ProgramDaysOfWeek)
	rows := make([]sessionModel.ProgramSessionModel, 0, len(dates))
	for _, d := range dates {
		if _, ok := preserved[d]; ok {
			res.Skipped++
			continue
		}
		rows = append(rows, sessionModel.ProgramSessionModel{
			ProgramSessionProgramID: program.ProgramID,
			ProgramSessionDate:      d,
			ProgramSessionStartTime: copyTod(program.ProgramDefaultStartTime),
			ProgramSessionEndTime:   copyTod(program.ProgramDefaultEndTime),
			ProgramSessionStatus:    sessionModel.SessionScheduled,
		})
	}

	if res.Created, err = g.insert(ctx, rows); err != nil {
		return GenerateResult{}, err
	}
	log.Printf("[SESSIONS] program=%s generated=%d deleted=%d skipped=%d preserved=%d",
		program.ProgramID, res.Created, res.Deleted, res.Skipped, res.Preserved)
	return res, nil
}

// ExecuteWithCustomSessions: kebijakan pembersihan yang sama, lalu satu sesi per entri apa adanya.
func (g *Generator) ExecuteWithCustomSessions(ctx context.Context, program *programModel.ProgramModel, list []CustomSession) (GenerateResult, error) {
	for i, cs := range list {
		if cs.Date.IsZero() {
			return GenerateResult{}, fmt.Errorf("sessions[%d]: date is required", i)
		}
		if err := sessionService.ValidateTimes(cs.StartTime, cs.EndTime); err != nil {
			return GenerateResult{}, fmt.Errorf("sessions[%d]: %w", i, err)
		}
	}

	res, _, err := g.clear(ctx, program.ProgramID)
	if err != nil {
		return GenerateResult{}, err
	}

	rows := make([]sessionModel.ProgramSessionModel, 0, len(list))
	for _, cs := range list {
		rows = append(rows, sessionModel.ProgramSessionModel{
			ProgramSessionProgramID: program.ProgramID,
			ProgramSessionDate:      dbtime.DateOnly(cs.Date),
			ProgramSessionStartTime: copyTod(cs.StartTime),
			ProgramSessionEndTime:   copyTod(cs.EndTime),
			ProgramSessionStatus:    sessionModel.SessionScheduled,
		})
	}
	if res.Created, err = g.insert(ctx, rows); err != nil {
		return GenerateResult{}, err
	}
	log.Printf("[SESSIONS] program=%s custom=%d deleted=%d preserved=%d",
		program.ProgramID, res.Created, res.Deleted, res.Preserved)
	return res, nil
}

// ClearScheduled: dipakai saat program dihapus; sesi completed/cancelled tetap sebagai riwayat.
func (g *Generator) ClearScheduled(ctx context.Context, programID uuid.UUID) (GenerateResult, error) {
	res, _, err := g.clear(ctx, programID)
	return res, err
}

// clear mengunci program, menghapus sesi scheduled, dan mengembalikan tanggal sesi yang dipertahankan.
func (g *Generator) clear(ctx context.Context, programID uuid.UUID) (GenerateResult, map[time.Time]struct{}, error) {
	db := g.DB.WithContext(ctx)

	var locked programModel.ProgramModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("program_id = ?", programID).
		Take(&locked).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GenerateResult{}, nil, ErrProgramNotFound
		}
		return GenerateResult{}, nil, errors.Wrap(err, "lock program")
	}

	del := db.Where("program_session_program_id = ? AND program_session_status = ?",
		programID, sessionModel.SessionScheduled).
		Delete(&sessionModel.ProgramSessionModel{})
	if del.Error != nil {
		return GenerateResult{}, nil, errors.Wrap(del.Error, "clear scheduled sessions")
	}

	var kept []sessionModel.ProgramSessionModel
	if err := db.Where("program_session_program_id = ?", programID).
		Find(&kept).Error; err != nil {
		return GenerateResult{}, nil, errors.Wrap(err, "load preserved sessions")
	}
	preserved := make(map[time.Time]struct{}, len(kept))
	for _, s := range kept {
		preserved[dbtime.DateOnly(s.ProgramSessionDate)] = struct{}{}
	}
	return GenerateResult{Deleted: int(del.RowsAffected), Preserved: len(kept)}, preserved, nil
}

func (g *Generator) insert(ctx context.Context, rows []sessionModel.ProgramSessionModel) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ProgramSessionDate.Before(rows[j].ProgramSessionDate)
	})
	tx := g.DB.WithContext(ctx).CreateInBatches(&rows, g.batchSize())
	if tx.Error != nil {
		return 0, errors.Wrap(tx.Error, "insert sessions")
	}
	return len(rows), nil
}

func copyTod(t *dbtime.Tod) *dbtime.Tod {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
