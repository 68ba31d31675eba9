// Package logger provides the process-wide structured logger: one flat
// line per event, written asynchronously to stdout and an optional file.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/typekeeper/core/buildinfo"
	coreconfig "github.com/m3rciful/typekeeper/core/config"
)

const writerBufSize = 64 * 1024

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	sink     *asyncWriter
	sinkFile io.Closer

	levelVar     slog.LevelVar
	debugSampler = newRatioSampler(1, 50)
	traceAll     bool

	// L is the base logger; nil until InitLogger runs.
	L *slog.Logger
)

// settings is the logging part of the config after defaults are applied.
type settings struct {
	level    slog.Level
	format   logFormat
	keyOrder []string
	profile  string
	file     string
	sampleN  int
	sampleD  int
}

func resolveSettings(cfg *coreconfig.Config) settings {
	s := settings{
		level:    slog.LevelInfo,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
		profile:  "prod",
		sampleN:  1,
		sampleD:  50,
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	if lvl, ok := allowedLevels[strings.ToLower(strings.TrimSpace(lc.Level))]; ok {
		s.level = levelFromName(lvl)
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}
	if order := splitList(lc.KeysOrder); len(order) > 0 && lc.KeysOrder != "default" {
		s.keyOrder = order
	}
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		s.file = filepath.Join(dir, name)
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		switch n, d, ok := parseRatioSpec(spec); {
		case !ok:
			// unparsable: keep the default ratio
		case n == 0 && d == 0:
			s.sampleN, s.sampleD = 0, 0
		case n > 0 && d > 0:
			s.sampleN, s.sampleD = n, d
		}
	}
	return s
}

func levelFromName(name string) slog.Level {
	switch name {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError, LevelFatal:
		return slog.LevelError
	}
	return slog.LevelInfo
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InitLogger configures the global structured logger. Later calls are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		s := resolveSettings(cfg)
		levelVar.Set(s.level)
		debugSampler.Set(s.sampleN, s.sampleD)
		traceAll = envFlag("TRACE") || envFlag("LOG_TRACE")

		outputs := []io.Writer{os.Stdout}
		if s.file != "" {
			f, openErr := openLogFile(s.file)
			if openErr != nil {
				err = openErr
				return
			}
			sinkFile = f
			outputs = append(outputs, f)
		}
		sink = newAsyncWriter(outputs, writerBufSize)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   sink,
			format:   s.format,
			keyOrder: s.keyOrder,
		}))
		slog.SetDefault(L)

		version, commit, date := buildinfo.Current()
		Info(context.Background(), "app", "startup",
			slog.String("go_version", runtime.Version()),
			slog.String("version", version),
			slog.String("build_commit", commit),
			slog.String("build_time", date),
			slog.String("cfg_profile", s.profile),
		)
	})
	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Shutdown flushes buffered output and closes the log file. Safe to call twice.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if sink != nil {
		errs = append(errs, sink.Flush(), sink.Close())
	}
	if sinkFile != nil {
		errs = append(errs, sinkFile.Close())
	}
	return errors.Join(errs...)
}

// ShouldSampleDebug reports whether a high-volume debug line should be kept.
// TRACE=1 keeps all of them.
func ShouldSampleDebug() bool {
	return traceAll || debugSampler.Allow()
}
