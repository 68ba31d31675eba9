package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/m3rciful/typekeeper/core/logger"
)

type cleanupStep struct {
	name string
	fn   func(context.Context) error
}

// Cleanup releases resources acquired during startup in reverse order.
type Cleanup struct {
	mu    sync.Mutex
	steps []cleanupStep
	done  bool
}

// Add registers fn to run on Close.
func (c *Cleanup) Add(name string, fn func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, cleanupStep{name: name, fn: fn})
}

// Close runs every step last-in first-out and joins their errors.
// Later calls are no-ops.
func (c *Cleanup) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return nil
	}
	c.done = true
	steps := c.steps
	c.steps = nil
	c.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		err := steps[i].fn(ctx)
		logger.Event(ctx, "app", levelFor(err), "cleanup",
			slog.String("status", logger.Status(err)),
			slog.String("step", steps[i].name),
			logger.Err(err),
		)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func levelFor(err error) slog.Level {
	if err != nil {
		return slog.LevelWarn
	}
	return slog.LevelDebug
}
