package convert

import (
	"errors"
	"testing"
	"time"

	"github.com/pfrederiksen/covid19-scraping/internal/config"
)

func TestSerialToDate(t *testing.T) {
	tests := []struct {
		name   string
		serial float64
		want   time.Time
	}{
		{"epoch", 0, time.Date(1899, 12, 30, 0, 0, 0, 0, config.JST)},
		{"day one", 1, time.Date(1899, 12, 31, 0, 0, 0, 0, config.JST)},
		{"first of 2020", 43831, time.Date(2020, 1, 1, 0, 0, 0, 0, config.JST)},
		{"leap day 2020", 43890, time.Date(2020, 2, 29, 0, 0, 0, 0, config.JST)},
		{"april 2020", 43922, time.Date(2020, 4, 1, 0, 0, 0, 0, config.JST)},
		{"fraction dropped", 43922.75, time.Date(2020, 4, 1, 0, 0, 0, 0, config.JST)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SerialToDate(tt.serial)
			if !got.Equal(tt.want) {
				t.Errorf("SerialToDate(%v) = %v, want %v", tt.serial, got, tt.want)
			}
			if _, offset := got.Zone(); offset != 9*60*60 {
				t.Errorf("SerialToDate(%v) offset = %d, want +09:00", tt.serial, offset)
			}
		})
	}
}

func TestSerialToDate_Recurrence(t *testing.T) {
	for n := 1; n <= 60000; n += 7 {
		prev := SerialToDate(float64(n - 1))
		cur := SerialToDate(float64(n))
		if d := cur.Sub(prev); d != 24*time.Hour {
			t.Fatalf("SerialToDate(%d) - SerialToDate(%d) = %v, want 24h", n, n-1, d)
		}
		if cur.Hour() != 0 || cur.Minute() != 0 {
			t.Fatalf("SerialToDate(%d) = %v, want midnight", n, cur)
		}
	}
}

func TestParseSerial(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"43922", time.Date(2020, 4, 1, 0, 0, 0, 0, config.JST), false},
		{" 43922.0 ", time.Date(2020, 4, 1, 0, 0, 0, 0, config.JST), false},
		{"", time.Time{}, true},
		{"令和2年", time.Time{}, true},
		{"NaN", time.Time{}, true},
		{"Inf", time.Time{}, true},
		{"9999999", time.Date(29279, 1, 23, 0, 0, 0, 0, config.JST), false},
		{"1e7", time.Time{}, true},
		{"-1e7", time.Time{}, true},
		{"1e300", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSerial(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSerial(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseSerial(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSerial_RangeError(t *testing.T) {
	_, err := ParseSerial("1e19")
	if !errors.Is(err, ErrSerialRange) {
		t.Errorf("ParseSerial(1e19) error = %v, want ErrSerialRange", err)
	}
}

func TestWeekdayLabel(t *testing.T) {
	want := []string{"月", "火", "水", "木", "金", "土", "日"}
	for i, label := range want {
		got, err := WeekdayLabel(i)
		if err != nil {
			t.Fatalf("WeekdayLabel(%d) error: %v", i, err)
		}
		if got != label {
			t.Errorf("WeekdayLabel(%d) = %q, want %q", i, got, label)
		}
	}
}

func TestWeekdayLabel_OutOfRange(t *testing.T) {
	for _, i := range []int{-1, 7, 8, 100} {
		got, err := WeekdayLabel(i)
		if !errors.Is(err, ErrWeekdayRange) {
			t.Errorf("WeekdayLabel(%d) error = %v, want ErrWeekdayRange", i, err)
		}
		if got != "" {
			t.Errorf("WeekdayLabel(%d) = %q, want empty", i, got)
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2020, 4, 6, 0, 0, 0, 0, config.JST), "月"},
		{time.Date(2020, 4, 1, 0, 0, 0, 0, config.JST), "水"},
		{time.Date(2020, 4, 4, 0, 0, 0, 0, config.JST), "土"},
		{time.Date(2020, 4, 5, 0, 0, 0, 0, config.JST), "日"},
		{SerialToDate(0), "土"},
	}

	for _, tt := range tests {
		if got := WeekdayOf(tt.date); got != tt.want {
			t.Errorf("WeekdayOf(%s) = %q, want %q", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestDateLabel(t *testing.T) {
	if got := DateLabel(SerialToDate(43922)); got != "2020/04/01(水)" {
		t.Errorf("DateLabel = %q, want 2020/04/01(水)", got)
	}
}
