package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/typekeeper/core/logger"
)

// EveryMinute fires at second zero of each minute.
const EveryMinute = "* * * * *"

// Runner drives a Scanner from a cron schedule.
type Runner struct {
	scanner *Scanner
	cron    *cron.Cron
	spec    string
	now     func() time.Time
}

// NewRunner schedules scanner on spec in the scanner's location.
// Overlapping runs are skipped rather than queued.
func NewRunner(scanner *Scanner, spec string) (*Runner, error) {
	if spec == "" {
		spec = EveryMinute
	}
	cl := cronLogger{}
	c := cron.New(
		cron.WithLocation(scanner.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	r := &Runner{scanner: scanner, cron: c, spec: spec, now: time.Now}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("reminder schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start registers the job and starts the scheduler. Jobs run with ctx.
func (r *Runner) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() {
		_, _ = r.scanner.Scan(ctx, r.now())
	}); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	r.cron.Start()
	logger.Info(ctx, component, "start", slog.String("status", "ok"), slog.String("schedule", r.spec))
	return nil
}

// Stop halts the scheduler and waits for a running scan, bounded by ctx.
func (r *Runner) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn(ctx, component, "stop", slog.String("status", "fail"), logger.Err(ctx.Err()))
		return
	}
	logger.Info(ctx, component, "stop", slog.String("status", "ok"))
}

// cronLogger routes cron's own messages into the structured logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Debug(context.Background(), component, "cron."+msg, kvAttrs(keysAndValues)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	attrs := append(kvAttrs(keysAndValues), logger.Err(err))
	logger.Error(context.Background(), component, "cron."+msg, attrs...)
}

func kvAttrs(kv []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		attrs = append(attrs, slog.Any(key, kv[i+1]))
	}
	return attrs
}
