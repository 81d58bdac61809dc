package model

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// WeekdaySet: himpunan kode hari (0=Ahad ... 6=Sabtu), tersimpan sebagai SMALLINT[] di Postgres.
type WeekdaySet []time.Weekday

// NewWeekdaySet membuang duplikat & mengurutkan; kode di luar 0..6 ditolak.
func NewWeekdaySet(codes []int) (WeekdaySet, error) {
	seen := make(map[int]struct{}, len(codes))
	out := make(WeekdaySet, 0, len(codes))
	for _, c := range codes {
		if c < 0 || c > 6 {
			return nil, fmt.Errorf("kode hari tidak valid: %d (0=Ahad..6=Sabtu)", c)
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, time.Weekday(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s WeekdaySet) Contains(d time.Weekday) bool {
	for _, w := range s {
		if w == d {
			return true
		}
	}
	return false
}

func (s WeekdaySet) Value() (driver.Value, error) {
	arr := make(pq.Int64Array, len(s))
	for i, w := range s {
		arr[i] = int64(w)
	}
	return arr.Value()
}

func (s *WeekdaySet) Scan(src any) error {
	var arr pq.Int64Array
	if err := arr.Scan(src); err != nil {
		return err
	}
	codes := make([]int, len(arr))
	for i, v := range arr {
		codes[i] = int(v)
	}
	set, err := NewWeekdaySet(codes)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

func (WeekdaySet) GormDataType() string { return "weekday_set" }

func (WeekdaySet) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "smallint[]"
	}
	return "text"
}
