package dto

import (
	"hifzku_backend/internals/features/programs/sessions/service"
	"hifzku_backend/internals/helpers/dbtime"
)

type CancelSessionRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// UpdateSessionRequest: field nil = tidak diubah; clear_times mengosongkan jam.
type UpdateSessionRequest struct {
	Date       *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	ClearTimes bool    `json:"clear_times"`
}

func (r *UpdateSessionRequest) ToInput() (service.UpdateInput, map[string][]string) {
	errs := map[string][]string{}
	in := service.UpdateInput{ClearTimes: r.ClearTimes}
	if r.Date != nil {
		d, err := dbtime.ParseDate(*r.Date)
		if err != nil {
			errs["date"] = append(errs["date"], err.Error())
		}
		in.Date = &d
	}
	if r.StartTime != nil {
		t, err := dbtime.Parse(*r.StartTime)
		if err != nil {
			errs["start_time"] = append(errs["start_time"], err.Error())
		}
		in.StartTime = &t
	}
	if r.EndTime != nil {
		t, err := dbtime.Parse(*r.EndTime)
		if err != nil {
			errs["end_time"] = append(errs["end_time"], err.Error())
		}
		in.EndTime = &t
	}
	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}
