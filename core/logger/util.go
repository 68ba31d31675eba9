package logger

import (
	"log/slog"
	"strings"
	"time"
)

// Status is "fail" for a non-nil err, "ok" otherwise.
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return "fail"
}

// Err is an "err" attribute; the empty Attr for nil is skipped by slog.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("err", err.Error())
}

// Took is the time since start, rounded to milliseconds.
func Took(start time.Time) time.Duration { return RoundMS(time.Since(start)) }

// RoundMS rounds d to the millisecond; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// SummarizeStrings joins at most limit values and reports whether any were cut.
func SummarizeStrings(values []string, limit int) (string, bool) {
	limit = max(limit, 0)
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}
