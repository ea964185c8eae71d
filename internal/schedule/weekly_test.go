package schedule

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestParse(t *testing.T) {
	cases := []struct {
		raw     string
		day     time.Weekday
		hour    int
		minute  int
		wantErr bool
	}{
		{raw: "monday 09:00", day: time.Monday, hour: 9},
		{raw: "Fri 21:30", day: time.Friday, hour: 21, minute: 30},
		{raw: "  SUNDAY 00:00  ", day: time.Sunday},
		{raw: "wed 23:59", day: time.Wednesday, hour: 23, minute: 59},
		{raw: "monday", wantErr: true},
		{raw: "noday 09:00", wantErr: true},
		{raw: "monday 24:00", wantErr: true},
		{raw: "monday 09:60", wantErr: true},
		{raw: "monday 0900", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		wk, err := Parse(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): want error, got %+v", tc.raw, wk)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.raw, err)
			continue
		}
		if wk.Day != tc.day || wk.Hour != tc.hour || wk.Minute != tc.minute {
			t.Errorf("Parse(%q) = %s %02d:%02d, want %s %02d:%02d",
				tc.raw, wk.Day, wk.Hour, wk.Minute, tc.day, tc.hour, tc.minute)
		}
	}
}

func TestNextStrictlyFuture(t *testing.T) {
	paris := mustLoad(t, "Europe/Paris")
	tokyo := mustLoad(t, "Asia/Tokyo")

	cases := []struct {
		name string
		wk   string
		now  time.Time
	}{
		{"same day earlier", "monday 09:00", time.Date(2025, 1, 6, 8, 59, 0, 0, time.UTC)},
		{"same day later", "monday 09:00", time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)},
		{"midweek", "friday 21:30", time.Date(2025, 1, 8, 12, 0, 0, 0, paris)},
		{"weekend wrap", "monday 00:00", time.Date(2025, 1, 11, 23, 30, 0, 0, tokyo)},
		{"sunday target", "sunday 06:15", time.Date(2025, 1, 6, 6, 15, 0, 0, paris)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wk, err := Parse(tc.wk)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.wk, err)
			}
			next := wk.Next(tc.now)
			if !next.After(tc.now) {
				t.Fatalf("Next(%v) = %v, not strictly in the future", tc.now, next)
			}
			if next.Weekday() != wk.Day {
				t.Errorf("Next weekday = %s, want %s", next.Weekday(), wk.Day)
			}
			if next.Hour() != wk.Hour || next.Minute() != wk.Minute {
				t.Errorf("Next wall time = %02d:%02d, want %02d:%02d",
					next.Hour(), next.Minute(), wk.Hour, wk.Minute)
			}
			if next.Location() != tc.now.Location() {
				t.Errorf("Next location = %v, want %v", next.Location(), tc.now.Location())
			}
			// A weekly schedule never skips more than one week ahead. The extra
			// hour of slack absorbs a DST transition inside the window.
			if next.Sub(tc.now) > 7*24*time.Hour+time.Hour {
				t.Errorf("Next(%v) = %v, more than a week away", tc.now, next)
			}
		})
	}
}

// A "now" that lands exactly on the scheduled instant must roll a full week:
// each wall-clock occurrence fires once.
func TestNextExactInstantRollsWeek(t *testing.T) {
	paris := mustLoad(t, "Europe/Paris")
	wk, err := Parse("monday 09:00")
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, paris) // Monday, exactly 09:00
	next := wk.Next(now)
	want := time.Date(2025, 1, 13, 9, 0, 0, 0, paris)
	if !next.Equal(want) {
		t.Fatalf("Next(exact instant) = %v, want %v", next, want)
	}
}

func TestNextJustAfterTargetRollsWeek(t *testing.T) {
	wk, err := Parse("monday 09:00")
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 1, 6, 9, 0, 1, 0, time.UTC) // Monday 09:00:01
	next := wk.Next(now)
	want := time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next(09:00:01) = %v, want next week's occurrence %v", next, want)
	}
}

// Occurrences are wall-clock times: crossing a DST transition keeps the
// scheduled hour even though the elapsed interval shrinks or grows.
func TestNextAcrossSpringForward(t *testing.T) {
	paris := mustLoad(t, "Europe/Paris") // jumps 02:00 -> 03:00 on 2025-03-30
	wk, err := Parse("monday 09:00")
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 3, 29, 12, 0, 0, 0, paris) // Saturday before the jump
	next := wk.Next(now)
	want := time.Date(2025, 3, 31, 9, 0, 0, 0, paris)
	if !next.Equal(want) {
		t.Fatalf("Next across spring-forward = %v, want %v", next, want)
	}
	if next.Hour() != 9 {
		t.Fatalf("wall hour = %d, want 9", next.Hour())
	}
}

func TestNextAcrossFallBack(t *testing.T) {
	paris := mustLoad(t, "Europe/Paris") // falls back 03:00 -> 02:00 on 2025-10-26
	wk, err := Parse("sunday 09:00")
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 10, 24, 12, 0, 0, 0, paris) // Friday before
	next := wk.Next(now)
	want := time.Date(2025, 10, 26, 9, 0, 0, 0, paris)
	if !next.Equal(want) {
		t.Fatalf("Next across fall-back = %v, want %v", next, want)
	}
}

func TestNewValidatesRange(t *testing.T) {
	if _, err := New(time.Monday, 24, 0); err == nil {
		t.Error("hour 24 accepted")
	}
	if _, err := New(time.Monday, 0, 60); err == nil {
		t.Error("minute 60 accepted")
	}
	if _, err := New(time.Monday, -1, 0); err == nil {
		t.Error("negative hour accepted")
	}
}

func TestString(t *testing.T) {
	wk, err := New(time.Thursday, 7, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got := wk.String(); got != "thursday 07:05" {
		t.Fatalf("String() = %q", got)
	}
}
