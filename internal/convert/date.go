package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/covid19-scraping/internal/config"
)

var (
	// ErrWeekdayRange is returned for weekday indexes outside 0-6.
	ErrWeekdayRange = errors.New("weekday index out of range")

	// ErrSerialRange is returned by ParseSerial for serials of MaxSerial or more
	// days either side of the epoch.
	ErrSerialRange = errors.New("date serial out of range")
)

// MaxSerial bounds accepted serials, roughly year 29000.
const MaxSerial = 1e7

// serialEpoch is day 0 of spreadsheet date serials. The 1899-12-30 origin absorbs
// the 1900 leap-year bug so serials from real workbooks line up.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, config.JST)

var weekdayLabels = [7]string{"月", "火", "水", "木", "金", "土", "日"}

// SerialToDate converts a spreadsheet date serial to midnight JST of that day.
// Any fractional part of serial is dropped.
func SerialToDate(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(serial))
}

// ParseSerial reads a serial from cell text such as "43922" or "43922.0".
func ParseSerial(s string) (time.Time, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date serial %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("parsing date serial %q: not a finite number", s)
	}
	if math.Abs(f) >= MaxSerial {
		return time.Time{}, fmt.Errorf("%w: %q", ErrSerialRange, s)
	}
	return SerialToDate(f), nil
}

// WeekdayLabel returns the one-character label for index, Monday=0 ... Sunday=6.
func WeekdayLabel(index int) (string, error) {
	if index < 0 || index >= len(weekdayLabels) {
		return "", fmt.Errorf("%w: %d", ErrWeekdayRange, index)
	}
	return weekdayLabels[index], nil
}

// WeekdayOf returns the label for the weekday of t.
func WeekdayOf(t time.Time) string {
	// time.Weekday counts from Sunday.
	return weekdayLabels[(int(t.Weekday())+6)%7]
}

// DateLabel formats t as 2020/04/01(水).
func DateLabel(t time.Time) string {
	return t.Format("2006/01/02") + "(" + WeekdayOf(t) + ")"
}
