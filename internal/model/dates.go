package model

import (
	"fmt"
	"strings"
	"time"
)

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDeadline converts a human-entered date to epoch milliseconds. Inputs
// without a zone are read as UTC.
func ParseDeadline(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty deadline")
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized deadline %q", raw)
}

func FormatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func (r Reminder) Display() DisplayReminder {
	return DisplayReminder{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Body:      r.Body,
		Deadline:  FormatMillis(r.Deadline),
		CreatedAt: FormatMillis(r.CreatedAt),
	}
}
