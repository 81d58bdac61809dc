// file: internals/features/programs/attendances/service/attendance_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	attendanceModel "hifzku_backend/internals/features/programs/attendances/model"
	programModel "hifzku_backend/internals/features/programs/programs/model"
	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	sessionService "hifzku_backend/internals/features/programs/sessions/service"
	studentModel "hifzku_backend/internals/features/students/students/model"
)

const (
	MaxHizb   = 60
	MaxThoman = 480
	// 8 thumun per hizb
	thomansPerHizb = 8
)

var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrProgramNotFound   = errors.New("program not found")
	ErrStudentNotInClub  = errors.New("student does not belong to the program's club and category")
	ErrStudentNotInGroup = errors.New("student is not in the program's group")
)

// InputError: nilai input tidak valid, per field (json name).
type InputError struct {
	Fields map[string][]string
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid attendance input: " + strings.Join(keys, ", ")
}

type RecordInput struct {
	Status        attendanceModel.AttendanceStatus
	HizbID        *int
	ThomanID      *int
	ExcusedReason *string
}

// ValidateInput: status dikenal; hizb 1..60; thumun 1..480 dan berada di dalam hizb bila keduanya diisi.
func ValidateInput(in RecordInput) error {
	fields := map[string][]string{}
	if !in.Status.Valid() {
		fields["status"] = append(fields["status"], "status must be one of present, absent, excused")
	}
	if in.HizbID != nil && (*in.HizbID < 1 || *in.HizbID > MaxHizb) {
		fields["hizb_id"] = append(fields["hizb_id"], fmt.Sprintf("hizb_id must be between 1 and %d", MaxHizb))
	}
	if in.ThomanID != nil && (*in.ThomanID < 1 || *in.ThomanID > MaxThoman) {
		fields["thoman_id"] = append(fields["thoman_id"], fmt.Sprintf("thoman_id must be between 1 and %d", MaxThoman))
	}
	if len(fields) == 0 && in.HizbID != nil && in.ThomanID != nil {
		if (*in.ThomanID-1)/thomansPerHizb+1 != *in.HizbID {
			fields["thoman_id"] = append(fields["thoman_id"], fmt.Sprintf("thoman_id %d is not inside hizb %d", *in.ThomanID, *in.HizbID))
		}
	}
	if len(fields) > 0 {
		return &InputError{Fields: fields}
	}
	return nil
}

// alasan izin hanya disimpan untuk status excused
func excusedReason(in RecordInput) *string {
	if in.Status != attendanceModel.AttendanceExcused || in.ExcusedReason == nil {
		return nil
	}
	r := strings.TrimSpace(*in.ExcusedReason)
	if r == "" {
		return nil
	}
	return &r
}

func loadProgram(ctx context.Context, tx *gorm.DB, programID uuid.UUID) (*programModel.ProgramModel, error) {
	var p programModel.ProgramModel
	if err := tx.WithContext(ctx).Unscoped().
		Where("program_id = ?", programID).
		Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, errors.Wrap(err, "load program")
	}
	return &p, nil
}

// openSession: kunci sesi; cancelled ditolak; scheduled → completed.
func openSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*sessionModel.ProgramSessionModel, error) {
	s, err := sessionService.LoadForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sessionService.Complete(ctx, tx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Execute: upsert kehadiran per (sesi, siswa).
// Baru: group_id = fauj siswa saat ini (snapshot). Update: group_id tidak disentuh.
func Execute(ctx context.Context, tx *gorm.DB, sessionID, studentID uuid.UUID, in RecordInput) (*attendanceModel.AttendanceModel, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	sess, err := openSession(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	prog, err := loadProgram(ctx, tx, sess.ProgramSessionProgramID)
	if err != nil {
		return nil, err
	}

	var st studentModel.StudentModel
	if err := tx.WithContext(ctx).Where("student_id = ?", studentID).Take(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, errors.Wrap(err, "load student")
	}
	if st.StudentClubID != prog.ProgramClubID || st.StudentCategoryID != prog.ProgramCategoryID {
		return nil, ErrStudentNotInClub
	}
	// program per fauj: selaras dengan roster OpenAttendance (anggota fauj + yang sudah tercatat)
	if prog.ProgramGroupID != nil && (st.StudentGroupID == nil || *st.StudentGroupID != *prog.ProgramGroupID) {
		var recorded int64
		if err := tx.WithContext(ctx).Model(&attendanceModel.AttendanceModel{}).
			Where("attendance_session_id = ? AND attendance_student_id = ?", sess.ProgramSessionID, st.StudentID).
			Count(&recorded).Error; err != nil {
			return nil, errors.Wrap(err, "check attendance")
		}
		if recorded == 0 {
			return nil, ErrStudentNotInGroup
		}
	}

	row := attendanceModel.AttendanceModel{
		AttendanceSessionID:     sess.ProgramSessionID,
		AttendanceStudentID:     st.StudentID,
		AttendanceGroupID:       st.StudentGroupID,
		AttendanceStatus:        in.Status,
		AttendanceHizbID:        in.HizbID,
		AttendanceThomanID:      in.ThomanID,
		AttendanceExcusedReason: excusedReason(in),
	}

	// insert; bila (session, student) sudah ada (termasuk balapan dengan request lain) → update di tempat
	ins := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attendance_session_id"}, {Name: "attendance_student_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if ins.Error != nil {
		return nil, errors.Wrap(ins.Error, "insert attendance")
	}
	if ins.RowsAffected == 1 {
		return &row, nil
	}

	var existing attendanceModel.AttendanceModel
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("attendance_session_id = ? AND attendance_student_id = ?", sess.ProgramSessionID, st.StudentID).
		Take(&existing).Error; err != nil {
		return nil, errors.Wrap(err, "load attendance")
	}
	existing.AttendanceStatus = in.Status
	existing.AttendanceHizbID = in.HizbID
	existing.AttendanceThomanID = in.ThomanID
	existing.AttendanceExcusedReason = excusedReason(in)
	if err := tx.WithContext(ctx).
		Model(&existing).
		Select("attendance_status", "attendance_hizb_id", "attendance_thoman_id", "attendance_excused_reason").
		Updates(&existing).Error; err != nil {
		return nil, errors.Wrap(err, "update attendance")
	}
	return &existing, nil
}

// RosterEntry: satu siswa di lembar kehadiran; Attendance nil = belum dicatat.
type RosterEntry struct {
	Student    studentModel.StudentModel        `json:"student"`
	Attendance *attendanceModel.AttendanceModel `json:"attendance"`
}

type Sheet struct {
	Session sessionModel.ProgramSessionModel `json:"session"`
	Program programModel.ProgramModel        `json:"program"`
	Roster  []RosterEntry                    `json:"roster"`
}

// OpenAttendance: membuka lembar kehadiran (scheduled → completed pada pembukaan pertama).
// Roster = siswa aktif di scope program (difilter fauj program bila ada) + siswa yang sudah punya catatan.
func OpenAttendance(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*Sheet, error) {
	sess, err := openSession(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	prog, err := loadProgram(ctx, tx, sess.ProgramSessionProgramID)
	if err != nil {
		return nil, err
	}

	var records []attendanceModel.AttendanceModel
	if err := tx.WithContext(ctx).
		Where("attendance_session_id = ?", sess.ProgramSessionID).
		Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "load attendances")
	}
	byStudent := make(map[uuid.UUID]*attendanceModel.AttendanceModel, len(records))
	recordedIDs := make([]uuid.UUID, 0, len(records))
	for i := range records {
		byStudent[records[i].AttendanceStudentID] = &records[i]
		recordedIDs = append(recordedIDs, records[i].AttendanceStudentID)
	}

	q := tx.WithContext(ctx).
		Where("student_club_id = ? AND student_category_id = ? AND student_is_active = ?",
			prog.ProgramClubID, prog.ProgramCategoryID, true)
	if prog.ProgramGroupID != nil {
		q = q.Where("student_group_id = ?", *prog.ProgramGroupID)
	}
	var roster []studentModel.StudentModel
	if err := q.Find(&roster).Error; err != nil {
		return nil, errors.Wrap(err, "load roster")
	}

	seen := make(map[uuid.UUID]struct{}, len(roster))
	for _, s := range roster {
		seen[s.StudentID] = struct{}{}
	}
	missing := make([]uuid.UUID, 0)
	for _, id := range recordedIDs {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		// sudah dicatat tapi kini pindah fauj / nonaktif / terhapus
		var extra []studentModel.StudentModel
		if err := tx.WithContext(ctx).Unscoped().
			Where("student_id IN ?", missing).
			Find(&extra).Error; err != nil {
			return nil, errors.Wrap(err, "load recorded students")
		}
		roster = append(roster, extra...)
	}

	sort.SliceStable(roster, func(i, j int) bool {
		a, b := roster[i], roster[j]
		if a.StudentLastName != b.StudentLastName {
			return a.StudentLastName < b.StudentLastName
		}
		if a.StudentFirstName != b.StudentFirstName {
			return a.StudentFirstName < b.StudentFirstName
		}
		return a.StudentID.String() < b.StudentID.String()
	})

	entries := make([]RosterEntry, 0, len(roster))
	for _, s := range roster {
		entries = append(entries, RosterEntry{Student: s, Attendance: byStudent[s.StudentID]})
	}
	return &Sheet{Session: *sess, Program: *prog, Roster: entries}, nil
}
