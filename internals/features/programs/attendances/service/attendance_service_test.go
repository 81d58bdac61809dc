package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hifzku_backend/internals/databases/dbtest"
	groupService "hifzku_backend/internals/features/groups/groups/service"
	attendanceModel "hifzku_backend/internals/features/programs/attendances/model"
	programModel "hifzku_backend/internals/features/programs/programs/model"
	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	sessionService "hifzku_backend/internals/features/programs/sessions/service"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

type sheetFixture struct {
	db       *gorm.DB
	scope    dbtest.Scope
	program  programModel.ProgramModel
	session  sessionModel.ProgramSessionModel
	groupA   uuid.UUID
	groupB   uuid.UUID
	students []studentModel.StudentModel
}

// scope dengan fauj A(2) dan B(2), program untuk seluruh kategori, satu sesi scheduled
func newSheetFixture(t *testing.T) sheetFixture {
	t.Helper()
	db := dbtest.Open(t)
	sc := dbtest.NewScope(t, db)
	a := dbtest.AddGroup(t, db, sc, groupService.Alphabet[0], 1)
	b := dbtest.AddGroup(t, db, sc, groupService.Alphabet[1], 2)
	students := append(
		dbtest.AddStudents(t, db, sc, 2, &a.GroupID),
		dbtest.AddStudents(t, db, sc, 2, &b.GroupID)...,
	)

	days, err := programModel.NewWeekdaySet([]int{1})
	require.NoError(t, err)
	p := programModel.ProgramModel{
		ProgramClubID:     sc.Club.ClubID,
		ProgramCategoryID: sc.Category.CategoryID,
		ProgramSubjectID:  dbtest.NewSubject(t, db).SubjectID,
		ProgramDaysOfWeek: days,
		ProgramStartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ProgramEndDate:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		ProgramIsActive:   true,
	}
	require.NoError(t, db.Create(&p).Error)

	s := sessionModel.ProgramSessionModel{
		ProgramSessionProgramID: p.ProgramID,
		ProgramSessionDate:      time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&s).Error)

	return sheetFixture{db: db, scope: sc, program: p, session: s, groupA: a.GroupID, groupB: b.GroupID, students: students}
}

func (f sheetFixture) status(t *testing.T) sessionModel.SessionStatus {
	t.Helper()
	var s sessionModel.ProgramSessionModel
	require.NoError(t, f.db.Where("program_session_id = ?", f.session.ProgramSessionID).Take(&s).Error)
	return s.ProgramSessionStatus
}

func ptr[T any](v T) *T { return &v }

func TestValidateInput(t *testing.T) {
	cases := []struct {
		name  string
		in    RecordInput
		field string
	}{
		{"present only", RecordInput{Status: attendanceModel.AttendancePresent}, ""},
		{"unknown status", RecordInput{Status: "late"}, "status"},
		{"hizb too large", RecordInput{Status: "present", HizbID: ptr(61)}, "hizb_id"},
		{"thoman zero", RecordInput{Status: "present", ThomanID: ptr(0)}, "thoman_id"},
		{"thoman inside hizb", RecordInput{Status: "present", HizbID: ptr(2), ThomanID: ptr(9)}, ""},
		{"thoman last of hizb", RecordInput{Status: "present", HizbID: ptr(60), ThomanID: ptr(480)}, ""},
		{"thoman outside hizb", RecordInput{Status: "present", HizbID: ptr(1), ThomanID: ptr(9)}, "thoman_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateInput(tc.in)
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var ie *InputError
			require.ErrorAs(t, err, &ie)
			assert.Contains(t, ie.Fields, tc.field)
		})
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("create snapshots the current group and completes the session", func(t *testing.T) {
		f := newSheetFixture(t)
		st := f.students[0]

		row, err := Execute(ctx, f.db, f.session.ProgramSessionID, st.StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent, HizbID: ptr(3), ThomanID: ptr(17)})
		require.NoError(t, err)
		require.NotNil(t, row.AttendanceGroupID)
		assert.Equal(t, f.groupA, *row.AttendanceGroupID)
		assert.Equal(t, 3, *row.AttendanceHizbID)
		assert.Equal(t, sessionModel.SessionCompleted, f.status(t))
	})

	t.Run("update keeps the snapshot after a transfer", func(t *testing.T) {
		f := newSheetFixture(t)
		st := f.students[0]

		_, err := Execute(ctx, f.db, f.session.ProgramSessionID, st.StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent})
		require.NoError(t, err)

		_, err = groupService.Transfer(ctx, f.db, st.StudentID, &f.groupB)
		require.NoError(t, err)

		row, err := Execute(ctx, f.db, f.session.ProgramSessionID, st.StudentID,
			RecordInput{Status: attendanceModel.AttendanceExcused, ExcusedReason: ptr("  sick ")})
		require.NoError(t, err)
		assert.Equal(t, attendanceModel.AttendanceExcused, row.AttendanceStatus)
		require.NotNil(t, row.AttendanceExcusedReason)
		assert.Equal(t, "sick", *row.AttendanceExcusedReason)

		var all []attendanceModel.AttendanceModel
		require.NoError(t, f.db.Where("attendance_session_id = ?", f.session.ProgramSessionID).Find(&all).Error)
		require.Len(t, all, 1)
		require.NotNil(t, all[0].AttendanceGroupID)
		assert.Equal(t, f.groupA, *all[0].AttendanceGroupID)
		assert.Equal(t, attendanceModel.AttendanceExcused, all[0].AttendanceStatus)
	})

	t.Run("excused reason dropped for other statuses", func(t *testing.T) {
		f := newSheetFixture(t)
		row, err := Execute(ctx, f.db, f.session.ProgramSessionID, f.students[1].StudentID,
			RecordInput{Status: attendanceModel.AttendanceAbsent, ExcusedReason: ptr("travel")})
		require.NoError(t, err)
		assert.Nil(t, row.AttendanceExcusedReason)
	})

	t.Run("cancelled session rejects recording", func(t *testing.T) {
		f := newSheetFixture(t)
		_, err := sessionService.Cancel(ctx, f.db, f.session.ProgramSessionID, ptr("holiday"))
		require.NoError(t, err)

		_, err = Execute(ctx, f.db, f.session.ProgramSessionID, f.students[0].StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent})
		assert.True(t, sessionService.IsStateError(err))

		var n int64
		require.NoError(t, f.db.Model(&attendanceModel.AttendanceModel{}).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("student from another scope", func(t *testing.T) {
		f := newSheetFixture(t)
		other := dbtest.NewScope(t, f.db)
		stranger := dbtest.AddStudents(t, f.db, other, 1, nil)

		_, err := Execute(ctx, f.db, f.session.ProgramSessionID, stranger[0].StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent})
		assert.ErrorIs(t, err, ErrStudentNotInClub)
	})

	t.Run("group program rejects students of other groups", func(t *testing.T) {
		f := newSheetFixture(t)
		require.NoError(t, f.db.Model(&f.program).Update("program_group_id", f.groupA).Error)
		outsider := f.students[2] // fauj B

		_, err := Execute(ctx, f.db, f.session.ProgramSessionID, outsider.StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent})
		assert.ErrorIs(t, err, ErrStudentNotInGroup)

		var n int64
		require.NoError(t, f.db.Model(&attendanceModel.AttendanceModel{}).Count(&n).Error)
		assert.Zero(t, n)

		// anggota fauj A tetap bisa dicatat
		_, err = Execute(ctx, f.db, f.session.ProgramSessionID, f.students[0].StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent})
		assert.NoError(t, err)
	})

	t.Run("group program still updates a recorded student who moved away", func(t *testing.T) {
		f := newSheetFixture(t)
		require.NoError(t, f.db.Model(&f.program).Update("program_group_id", f.groupA).Error)
		moved := f.students[0]

		_, err := Execute(ctx, f.db, f.session.ProgramSessionID, moved.StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent})
		require.NoError(t, err)
		_, err = groupService.Transfer(ctx, f.db, moved.StudentID, &f.groupB)
		require.NoError(t, err)

		row, err := Execute(ctx, f.db, f.session.ProgramSessionID, moved.StudentID,
			RecordInput{Status: attendanceModel.AttendanceAbsent})
		require.NoError(t, err)
		assert.Equal(t, attendanceModel.AttendanceAbsent, row.AttendanceStatus)
	})

	t.Run("unknown session or student", func(t *testing.T) {
		f := newSheetFixture(t)
		_, err := Execute(ctx, f.db, uuid.New(), f.students[0].StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent})
		assert.ErrorIs(t, err, sessionService.ErrSessionNotFound)

		_, err = Execute(ctx, f.db, f.session.ProgramSessionID, uuid.New(),
			RecordInput{Status: attendanceModel.AttendancePresent})
		assert.ErrorIs(t, err, ErrStudentNotFound)
	})

	t.Run("invalid input touches nothing", func(t *testing.T) {
		f := newSheetFixture(t)
		_, err := Execute(ctx, f.db, f.session.ProgramSessionID, f.students[0].StudentID,
			RecordInput{Status: "late"})
		var ie *InputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, sessionModel.SessionScheduled, f.status(t))
	})
}

func TestOpenAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("first open completes the session and lists the category", func(t *testing.T) {
		f := newSheetFixture(t)
		sheet, err := OpenAttendance(ctx, f.db, f.session.ProgramSessionID)
		require.NoError(t, err)
		assert.Equal(t, sessionModel.SessionCompleted, sheet.Session.ProgramSessionStatus)
		assert.NotNil(t, sheet.Session.ProgramSessionCompletedAt)
		assert.Len(t, sheet.Roster, 4)
		for _, e := range sheet.Roster {
			assert.Nil(t, e.Attendance)
		}

		// pembukaan kedua tidak mengubah apa-apa
		again, err := OpenAttendance(ctx, f.db, f.session.ProgramSessionID)
		require.NoError(t, err)
		assert.Equal(t, sessionModel.SessionCompleted, again.Session.ProgramSessionStatus)
	})

	t.Run("group program keeps recorded students who moved away", func(t *testing.T) {
		f := newSheetFixture(t)
		require.NoError(t, f.db.Model(&f.program).Update("program_group_id", f.groupA).Error)

		moved := f.students[0]
		_, err := Execute(ctx, f.db, f.session.ProgramSessionID, moved.StudentID,
			RecordInput{Status: attendanceModel.AttendancePresent})
		require.NoError(t, err)
		_, err = groupService.Transfer(ctx, f.db, moved.StudentID, &f.groupB)
		require.NoError(t, err)

		sheet, err := OpenAttendance(ctx, f.db, f.session.ProgramSessionID)
		require.NoError(t, err)
		require.Len(t, sheet.Roster, 2)

		var found bool
		for _, e := range sheet.Roster {
			if e.Student.StudentID == moved.StudentID {
				found = true
				require.NotNil(t, e.Attendance)
				assert.Equal(t, f.groupA, *e.Attendance.AttendanceGroupID)
			}
		}
		assert.True(t, found)
	})

	t.Run("cancelled session cannot be opened", func(t *testing.T) {
		f := newSheetFixture(t)
		_, err := sessionService.Cancel(ctx, f.db, f.session.ProgramSessionID, nil)
		require.NoError(t, err)

		_, err = OpenAttendance(ctx, f.db, f.session.ProgramSessionID)
		assert.True(t, sessionService.IsStateError(err))
		assert.Equal(t, sessionModel.SessionCancelled, f.status(t))
	})
}
