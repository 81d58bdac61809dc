package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hifzku_backend/internals/databases/dbtest"
	programModel "hifzku_backend/internals/features/programs/programs/model"
	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	"hifzku_backend/internals/helpers/dbtime"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mwf(t *testing.T) programModel.WeekdaySet {
	t.Helper()
	set, err := programModel.NewWeekdaySet([]int{1, 3, 5})
	require.NoError(t, err)
	return set
}

func newProgram(t *testing.T, db *gorm.DB, start, end time.Time, days programModel.WeekdaySet) programModel.ProgramModel {
	t.Helper()
	sc := dbtest.NewScope(t, db)
	subj := dbtest.NewSubject(t, db)
	st, err := dbtime.Parse("16:00")
	require.NoError(t, err)
	p := programModel.ProgramModel{
		ProgramClubID:           sc.Club.ClubID,
		ProgramCategoryID:       sc.Category.CategoryID,
		ProgramSubjectID:        subj.SubjectID,
		ProgramDaysOfWeek:       days,
		ProgramStartDate:        start,
		ProgramEndDate:          end,
		ProgramDefaultStartTime: &st,
		ProgramIsActive:         true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func sessionsOf(t *testing.T, db *gorm.DB, p programModel.ProgramModel) []sessionModel.ProgramSessionModel {
	t.Helper()
	var rows []sessionModel.ProgramSessionModel
	require.NoError(t, db.Where("program_session_program_id = ?", p.ProgramID).
		Order("program_session_date ASC").
		Find(&rows).Error)
	return rows
}

func TestExpandDates(t *testing.T) {
	// inklusif di kedua ujung: 5 Senin + 5 Rabu + 4 Jumat
	t.Run("january 2024 mon/wed/fri", func(t *testing.T) {
		dates := ExpandDates(day(2024, 1, 1), day(2024, 1, 31), mwf(t))
		require.Len(t, dates, 14)
		assert.Equal(t, day(2024, 1, 1), dates[0])
		assert.Equal(t, day(2024, 1, 31), dates[13])
		for _, d := range dates {
			assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, d.Weekday())
		}
	})

	t.Run("single day range", func(t *testing.T) {
		assert.Len(t, ExpandDates(day(2024, 1, 1), day(2024, 1, 1), mwf(t)), 1)
		assert.Empty(t, ExpandDates(day(2024, 1, 2), day(2024, 1, 2), mwf(t)))
	})

	t.Run("end before start or no days", func(t *testing.T) {
		assert.Empty(t, ExpandDates(day(2024, 2, 1), day(2024, 1, 1), mwf(t)))
		assert.Empty(t, ExpandDates(day(2024, 1, 1), day(2024, 1, 31), nil))
	})
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(day(2024, 1, 1), day(2024, 1, 1)))
	assert.NoError(t, ValidateRange(day(2024, 1, 1), day(2024, 1, 1).AddDate(0, 0, maxScheduleDays-1)))

	err := ValidateRange(day(2024, 1, 1), day(2024, 1, 1).AddDate(0, 0, maxScheduleDays))
	assert.ErrorIs(t, err, ErrInvalidRange)

	err = ValidateRange(day(2024, 2, 1), day(2024, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Contains(t, err.Error(), "after end_date")
}

func TestGeneratorExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one scheduled session per matching date", func(t *testing.T) {
		db := dbtest.Open(t)
		p := newProgram(t, db, day(2024, 1, 1), day(2024, 1, 31), mwf(t))

		res, err := (&Generator{DB: db, BatchSize: 5}).Execute(ctx, &p)
		require.NoError(t, err)
		assert.Equal(t, 14, res.Created)

		rows := sessionsOf(t, db, p)
		require.Len(t, rows, 14)
		for _, s := range rows {
			assert.Equal(t, sessionModel.SessionScheduled, s.ProgramSessionStatus)
			require.NotNil(t, s.ProgramSessionStartTime)
			assert.Equal(t, "16:00:00", s.ProgramSessionStartTime.String())
			assert.Nil(t, s.ProgramSessionEndTime)
		}
	})

	t.Run("regenerating does not duplicate", func(t *testing.T) {
		db := dbtest.Open(t)
		p := newProgram(t, db, day(2024, 1, 1), day(2024, 1, 31), mwf(t))
		g := &Generator{DB: db}

		_, err := g.Execute(ctx, &p)
		require.NoError(t, err)
		res, err := g.Execute(ctx, &p)
		require.NoError(t, err)
		assert.Equal(t, 14, res.Deleted)
		assert.Equal(t, 14, res.Created)
		assert.Len(t, sessionsOf(t, db, p), 14)
	})

	t.Run("completed and cancelled sessions survive regeneration", func(t *testing.T) {
		db := dbtest.Open(t)
		p := newProgram(t, db, day(2024, 1, 1), day(2024, 1, 31), mwf(t))
		g := &Generator{DB: db}
		_, err := g.Execute(ctx, &p)
		require.NoError(t, err)

		rows := sessionsOf(t, db, p)
		require.NoError(t, db.Model(&rows[0]).Update("program_session_status", sessionModel.SessionCompleted).Error)
		require.NoError(t, db.Model(&rows[1]).Update("program_session_status", sessionModel.SessionCancelled).Error)

		res, err := g.Execute(ctx, &p)
		require.NoError(t, err)
		assert.Equal(t, 12, res.Deleted)
		assert.Equal(t, 2, res.Preserved)
		assert.Equal(t, 2, res.Skipped)
		assert.Equal(t, 12, res.Created)

		after := sessionsOf(t, db, p)
		require.Len(t, after, 14)
		assert.Equal(t, rows[0].ProgramSessionID, after[0].ProgramSessionID)
		assert.Equal(t, sessionModel.SessionCompleted, after[0].ProgramSessionStatus)
		assert.Equal(t, rows[1].ProgramSessionID, after[1].ProgramSessionID)
		assert.Equal(t, sessionModel.SessionCancelled, after[1].ProgramSessionStatus)
	})

	t.Run("range guard", func(t *testing.T) {
		db := dbtest.Open(t)
		p := newProgram(t, db, day(2024, 1, 1), day(2027, 1, 1), mwf(t))
		_, err := (&Generator{DB: db}).Execute(ctx, &p)
		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.Empty(t, sessionsOf(t, db, p))
	})

	t.Run("unknown program", func(t *testing.T) {
		db := dbtest.Open(t)
		p := programModel.ProgramModel{
			ProgramStartDate:  day(2024, 1, 1),
			ProgramEndDate:    day(2024, 1, 31),
			ProgramDaysOfWeek: mwf(t),
		}
		_, err := (&Generator{DB: db}).Execute(ctx, &p)
		assert.ErrorIs(t, err, ErrProgramNotFound)
	})
}

func TestGeneratorClearScheduled(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	p := newProgram(t, db, day(2024, 1, 1), day(2024, 1, 31), mwf(t))
	g := &Generator{DB: db}

	_, err := g.Execute(ctx, &p)
	require.NoError(t, err)
	rows := sessionsOf(t, db, p)
	require.NoError(t, db.Model(&rows[0]).Update("program_session_status", sessionModel.SessionCompleted).Error)

	res, err := g.ClearScheduled(ctx, p.ProgramID)
	require.NoError(t, err)
	assert.Equal(t, 13, res.Deleted)
	assert.Equal(t, 1, res.Preserved)

	left := sessionsOf(t, db, p)
	require.Len(t, left, 1)
	assert.Equal(t, sessionModel.SessionCompleted, left[0].ProgramSessionStatus)
}

func TestGeneratorExecuteWithCustomSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("creates entries verbatim", func(t *testing.T) {
		db := dbtest.Open(t)
		p := newProgram(t, db, day(2024, 1, 1), day(2024, 1, 31), mwf(t))
		g := &Generator{DB: db}
		_, err := g.Execute(ctx, &p)
		require.NoError(t, err)

		start, _ := dbtime.Parse("08:30")
		end, _ := dbtime.Parse("10:00")
		list := []CustomSession{
			{Date: day(2024, 1, 6), StartTime: &start, EndTime: &end},
			{Date: day(2024, 1, 2)},
		}
		res, err := g.ExecuteWithCustomSessions(ctx, &p, list)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Created)
		assert.Equal(t, 14, res.Deleted)

		rows := sessionsOf(t, db, p)
		require.Len(t, rows, 2)
		assert.True(t, day(2024, 1, 2).Equal(rows[0].ProgramSessionDate))
		assert.Nil(t, rows[0].ProgramSessionStartTime)
		assert.True(t, day(2024, 1, 6).Equal(rows[1].ProgramSessionDate))
		require.NotNil(t, rows[1].ProgramSessionEndTime)
		assert.Equal(t, "10:00:00", rows[1].ProgramSessionEndTime.String())
	})

	t.Run("end before start rejected before any write", func(t *testing.T) {
		db := dbtest.Open(t)
		p := newProgram(t, db, day(2024, 1, 1), day(2024, 1, 31), mwf(t))
		_, err := (&Generator{DB: db}).Execute(ctx, &p)
		require.NoError(t, err)

		start, _ := dbtime.Parse("10:00")
		end, _ := dbtime.Parse("09:00")
		_, err = (&Generator{DB: db}).ExecuteWithCustomSessions(ctx, &p,
			[]CustomSession{{Date: day(2024, 1, 3), StartTime: &start, EndTime: &end}})
		require.Error(t, err)
		assert.Len(t, sessionsOf(t, db, p), 14)
	})
}

func TestPreview(t *testing.T) {
	st, _ := dbtime.Parse("07:00")
	p := programModel.ProgramModel{
		ProgramStartDate:        day(2024, 1, 1),
		ProgramEndDate:          day(2024, 1, 31),
		ProgramDaysOfWeek:       mwf(t),
		ProgramDefaultStartTime: &st,
	}
	out, err := Preview(&p)
	require.NoError(t, err)
	require.Len(t, out, 14)
	require.NotNil(t, out[0].StartTime)
	assert.Equal(t, "07:00:00", out[0].StartTime.String())

	// copy, bukan alias ke default program
	out[0].StartTime.Time = out[0].StartTime.Add(time.Hour)
	assert.Equal(t, "07:00:00", p.ProgramDefaultStartTime.String())
}

func TestBucketSessions(t *testing.T) {
	loc := dbtime.AppLocation()
	mk := func(d time.Time) sessionModel.ProgramSessionModel {
		return sessionModel.ProgramSessionModel{ProgramSessionDate: d}
	}
	sessions := []sessionModel.ProgramSessionModel{
		mk(day(2024, 3, 9)),
		mk(day(2024, 3, 10)),
		mk(day(2024, 3, 11)),
	}

	t.Run("today is old once the day has started", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 9, 0, 0, 0, loc)
		future, old := BucketSessions(sessions, now)
		require.Len(t, future, 1)
		assert.True(t, day(2024, 3, 11).Equal(future[0].ProgramSessionDate))
		assert.Len(t, old, 2)
	})

	t.Run("exactly midnight counts as future", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
		future, old := BucketSessions(sessions, now)
		assert.Len(t, future, 2)
		assert.Len(t, old, 1)
	})
}
