package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"hifzku_backend/internals/features/programs/programs/model"
	"hifzku_backend/internals/features/programs/programs/service"
	sessionModel "hifzku_backend/internals/features/programs/sessions/model"
	"hifzku_backend/internals/helpers/dbtime"
)

// SessionInput: satu sesi custom (hasil edit preview).
type SessionInput struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type CreateProgramRequest struct {
	ClubID           uuid.UUID      `json:"club_id" validate:"required"`
	CategoryID       uuid.UUID      `json:"category_id" validate:"required"`
	GroupID          *uuid.UUID     `json:"group_id"`
	SubjectID        uuid.UUID      `json:"subject_id" validate:"required"`
	DaysOfWeek       []int          `json:"days_of_week" validate:"required,min=1,max=7,dive,min=0,max=6"`
	StartDate        string         `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string         `json:"end_date" validate:"required,datetime=2006-01-02"`
	DefaultStartTime *string        `json:"default_start_time"`
	DefaultEndTime   *string        `json:"default_end_time"`
	IsActive         *bool          `json:"is_active"`
	Sessions         []SessionInput `json:"sessions" validate:"omitempty,max=1000,dive"`
}

// ToModel: errs != nil berisi pesan per field (format JsonValidationError).
func (r *CreateProgramRequest) ToModel() (model.ProgramModel, map[string][]string) {
	errs := fieldErrors{}
	m := model.ProgramModel{
		ProgramClubID:     r.ClubID,
		ProgramCategoryID: r.CategoryID,
		ProgramGroupID:    r.GroupID,
		ProgramSubjectID:  r.SubjectID,
		ProgramIsActive:   true,
	}
	if r.IsActive != nil {
		m.ProgramIsActive = *r.IsActive
	}

	days, err := model.NewWeekdaySet(r.DaysOfWeek)
	errs.add("days_of_week", err)
	m.ProgramDaysOfWeek = days

	m.ProgramStartDate = errs.date("start_date", r.StartDate)
	m.ProgramEndDate = errs.date("end_date", r.EndDate)
	m.ProgramDefaultStartTime = errs.tod("default_start_time", r.DefaultStartTime)
	m.ProgramDefaultEndTime = errs.tod("default_end_time", r.DefaultEndTime)
	errs.schedule(&m)

	return m, errs.orNil()
}

// CustomSessions: nil bila sessions tidak dikirim.
func (r *CreateProgramRequest) CustomSessions() ([]service.CustomSession, map[string][]string) {
	return toCustom(r.Sessions)
}

// UpdateProgramRequest: PATCH; field nil = tidak diubah.
// Sessions dikirim → jadwal ditulis ulang apa adanya; perubahan hari/tanggal/jam → generate ulang.
type UpdateProgramRequest struct {
	GroupID          *uuid.UUID      `json:"group_id"`
	ClearGroup       bool            `json:"clear_group"`
	SubjectID        *uuid.UUID      `json:"subject_id"`
	DaysOfWeek       []int           `json:"days_of_week" validate:"omitempty,min=1,max=7,dive,min=0,max=6"`
	StartDate        *string         `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate          *string         `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DefaultStartTime *string         `json:"default_start_time"`
	DefaultEndTime   *string         `json:"default_end_time"`
	IsActive         *bool           `json:"is_active"`
	Sessions         *[]SessionInput `json:"sessions" validate:"omitempty,max=1000,dive"`
}

// Apply menulis perubahan ke m. scheduleChanged = hari, rentang, atau jam default berubah.
func (r *UpdateProgramRequest) Apply(m *model.ProgramModel) (scheduleChanged bool, errs map[string][]string) {
	fe := fieldErrors{}
	if r.ClearGroup {
		m.ProgramGroupID = nil
	} else if r.GroupID != nil {
		m.ProgramGroupID = r.GroupID
	}
	if r.SubjectID != nil {
		m.ProgramSubjectID = *r.SubjectID
	}
	if r.IsActive != nil {
		m.ProgramIsActive = *r.IsActive
	}
	if r.DaysOfWeek != nil {
		days, err := model.NewWeekdaySet(r.DaysOfWeek)
		fe.add("days_of_week", err)
		m.ProgramDaysOfWeek = days
		scheduleChanged = true
	}
	if r.StartDate != nil {
		m.ProgramStartDate = fe.date("start_date", *r.StartDate)
		scheduleChanged = true
	}
	if r.EndDate != nil {
		m.ProgramEndDate = fe.date("end_date", *r.EndDate)
		scheduleChanged = true
	}
	if r.DefaultStartTime != nil {
		m.ProgramDefaultStartTime = fe.tod("default_start_time", r.DefaultStartTime)
		scheduleChanged = true
	}
	if r.DefaultEndTime != nil {
		m.ProgramDefaultEndTime = fe.tod("default_end_time", r.DefaultEndTime)
		scheduleChanged = true
	}
	fe.schedule(m)
	return scheduleChanged, fe.orNil()
}

func (r *UpdateProgramRequest) CustomSessions() ([]service.CustomSession, map[string][]string) {
	if r.Sessions == nil {
		return nil, nil
	}
	list, errs := toCustom(*r.Sessions)
	if list == nil && errs == nil {
		list = []service.CustomSession{}
	}
	return list, errs
}

// PreviewRequest: sama dengan create tanpa sessions; tidak disimpan.
type PreviewRequest struct {
	DaysOfWeek       []int   `json:"days_of_week" validate:"required,min=1,max=7,dive,min=0,max=6"`
	StartDate        string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	DefaultStartTime *string `json:"default_start_time"`
	DefaultEndTime   *string `json:"default_end_time"`
}

func (r *PreviewRequest) ToModel() (model.ProgramModel, map[string][]string) {
	errs := fieldErrors{}
	var m model.ProgramModel
	days, err := model.NewWeekdaySet(r.DaysOfWeek)
	errs.add("days_of_week", err)
	m.ProgramDaysOfWeek = days
	m.ProgramStartDate = errs.date("start_date", r.StartDate)
	m.ProgramEndDate = errs.date("end_date", r.EndDate)
	m.ProgramDefaultStartTime = errs.tod("default_start_time", r.DefaultStartTime)
	m.ProgramDefaultEndTime = errs.tod("default_end_time", r.DefaultEndTime)
	errs.schedule(&m)
	return m, errs.orNil()
}

/* =========================
   Responses
========================= */

type SessionResponse struct {
	Date      string  `json:"date"`
	Weekday   int     `json:"weekday"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

func FromCustomSessions(list []service.CustomSession) []SessionResponse {
	out := make([]SessionResponse, len(list))
	for i, cs := range list {
		out[i] = SessionResponse{
			Date:      cs.Date.Format(dbtime.DateLayout),
			Weekday:   int(cs.Date.Weekday()),
			StartTime: todString(cs.StartTime),
			EndTime:   todString(cs.EndTime),
		}
	}
	return out
}

type BucketedSessions struct {
	Future []sessionModel.ProgramSessionModel `json:"future"`
	Old    []sessionModel.ProgramSessionModel `json:"old"`
}

type ProgramResponse struct {
	Program    model.ProgramModel      `json:"program"`
	Generation *service.GenerateResult `json:"generation,omitempty"`
}

/* =========================
   internals
========================= */

type fieldErrors map[string][]string

func (fe fieldErrors) add(field string, err error) {
	if err != nil {
		fe[field] = append(fe[field], err.Error())
	}
}

func (fe fieldErrors) date(field, s string) time.Time {
	t, err := dbtime.ParseDate(s)
	fe.add(field, err)
	return t
}

func (fe fieldErrors) tod(field string, s *string) *dbtime.Tod {
	t, err := dbtime.ParsePtr(s)
	fe.add(field, err)
	return t
}

// schedule: cek silang setelah semua field terbaca.
func (fe fieldErrors) schedule(m *model.ProgramModel) {
	if len(fe) > 0 {
		return
	}
	if err := service.ValidateRange(m.ProgramStartDate, m.ProgramEndDate); err != nil {
		fe.add("end_date", err)
	}
	if m.ProgramDefaultStartTime != nil && m.ProgramDefaultEndTime != nil &&
		!m.ProgramDefaultStartTime.Before(*m.ProgramDefaultEndTime) {
		fe.add("default_end_time", fmt.Errorf("default_end_time must be after default_start_time"))
	}
}

func (fe fieldErrors) orNil() map[string][]string {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func toCustom(in []SessionInput) ([]service.CustomSession, map[string][]string) {
	if in == nil {
		return nil, nil
	}
	fe := fieldErrors{}
	out := make([]service.CustomSession, 0, len(in))
	for i, s := range in {
		key := fmt.Sprintf("sessions[%d]", i)
		cs := service.CustomSession{
			Date:      fe.date(key+".date", s.Date),
			StartTime: fe.tod(key+".start_time", s.StartTime),
			EndTime:   fe.tod(key+".end_time", s.EndTime),
		}
		if cs.StartTime != nil && cs.EndTime != nil && !cs.StartTime.Before(*cs.EndTime) {
			fe.add(key+".end_time", fmt.Errorf("end_time must be after start_time"))
		}
		out = append(out, cs)
	}
	return out, fe.orNil()
}

func todString(t *dbtime.Tod) *string {
	if t == nil {
		return nil
	}
	s := t.Format("15:04")
	return &s
}
