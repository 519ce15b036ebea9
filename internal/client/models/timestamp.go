package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// Timestamp decodes whatever date layout the API happens to emit: RFC3339,
// zone-less "2006-01-02T15:04:05.999999", plain dates and so on. Zone-less
// values are read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// FormatDate renders t as "Apr 9, 2025", or "Invalid date" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "Invalid date"
	}
	return t.Format("Jan 2, 2006")
}

// RelativeTime renders t relative to now ("5 minutes ago"). Anything a week
// or older falls back to FormatDate.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "Invalid date"
	}

	secs := int(now.Sub(t).Seconds())
	if secs < 60 {
		return fmt.Sprintf("%d seconds ago", secs)
	}
	if mins := secs / 60; mins < 60 {
		return plural(mins, "minute")
	}
	if hours := secs / 3600; hours < 24 {
		return plural(hours, "hour")
	}
	if days := secs / 86400; days < 7 {
		return plural(days, "day")
	}
	return FormatDate(t)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
