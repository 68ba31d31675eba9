package logger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

var components sync.Map // component name -> *slog.Logger

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// Component returns L scoped to name. Loggers are cached per name.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return L
	}
	if cached, ok := components.Load(name); ok {
		return cached.(*slog.Logger)
	}
	scoped, _ := components.LoadOrStore(name, L.With("component", name))
	return scoped.(*slog.Logger)
}

// LogEvent writes one record with the event attribute first.
// A nil logger falls back to the one stored in ctx, then to L; with neither the call is dropped.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		if logg = FromContext(ctx); logg == nil {
			return
		}
	}
	ctx = orBackground(ctx)
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Event logs event for component at level.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		if logg = FromContext(ctx); logg != nil {
			if c := strings.TrimSpace(component); c != "" {
				logg = logg.With("component", c)
			}
		}
	}
	LogEvent(ctx, logg, level, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}
