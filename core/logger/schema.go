package logger

import "strings"

// Level names as printed in the level field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

var allowedLevels = map[string]string{
	"debug": LevelDebug, "info": LevelInfo,
	"warn": LevelWarn, "warning": LevelWarn,
	"error": LevelError, "fatal": LevelFatal,
}

// enum is a closed set of values for one log key.
type enum map[string]struct{}

func newEnum(values ...string) enum {
	e := make(enum, len(values))
	for _, v := range values {
		e[v] = struct{}{}
	}
	return e
}

// match lowercases v and reports whether it belongs to e.
func (e enum) match(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	_, ok := e[v]
	return v, ok && v != ""
}

var (
	statusValues  = newEnum("ok", "fail", "skip", "retry", "rate_limited", "cancelled", "conflict")
	cacheValues   = newEnum("hit", "miss", "refresh", "evict")
	outcomeValues = newEnum("ok", "fail", "cancelled", "rate_limited", "reprompt", "not_found", "duplicate")
)

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if name, ok := allowedLevels[strings.ToLower(level)]; ok {
		return name
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases status; unknown values are kept but flagged.
func normalizeStatus(status string) (string, bool) { return statusValues.match(status) }

func normalizeCache(cache string) (string, bool) { return cacheValues.match(cache) }

func normalizeOutcome(outcome string) (string, bool) { return outcomeValues.match(outcome) }

// defaultKeyOrder puts identity and correlation keys first; any key not
// listed follows in alphabetical order.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "job", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "handler",
	"flow", "step", "field", "entry_id", "kind", "cb_key", "outcome",
	"duration_ms", "messages", "kb", "count", "users", "fired", "skipped",
	"version", "cache", "payload", "lang", "username",
	"mode", "listen", "public_url", "http_code", "driver", "db",
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms", "rate_limited",
}
