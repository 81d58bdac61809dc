// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"strings"
	"sync"
	"time"

	"hifzku_backend/internals/configs"
)

const DateLayout = "2006-01-02"

var (
	appLoc     *time.Location
	appLocOnce sync.Once
)

// AppLocation: zona waktu aplikasi dari APP_TIMEZONE; fallback UTC.
func AppLocation() *time.Location {
	appLocOnce.Do(func() {
		name := strings.TrimSpace(configs.AppTimezone)
		if name == "" {
			appLoc = time.UTC
			return
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			appLoc = time.UTC
			return
		}
		appLoc = loc
	})
	return appLoc
}

// Now: "sekarang" di zona aplikasi.
func Now() time.Time {
	return time.Now().In(AppLocation())
}

// DateOnly: tanggal kalender t (di zona t sendiri) sebagai 00:00 UTC, bentuk yang disimpan di kolom DATE.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate: "YYYY-MM-DD" → 00:00 UTC
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// Today: tanggal hari ini menurut zona aplikasi.
func Today() time.Time {
	return DateOnly(Now())
}
