package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/typekeeper/core/logger"
	"github.com/m3rciful/typekeeper/core/telegram/netutil"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job, flood waits included.
	MaxDuration time.Duration
}

type job struct {
	ctx    context.Context
	action string
	target int64
	run    func() error
}

// Dispatcher executes outbound Telegram calls on a fixed worker pool.
// Transient network failures are retried with linear backoff and
// flood-control replies are retried after the delay Telegram asks for.
type Dispatcher struct {
	opts Options
	jobs chan job
	mu   sync.RWMutex
	done bool
	wg   sync.WaitGroup

	sent atomic.Uint64
	errs atomic.Uint64

	sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher starts a dispatcher, filling zero options with defaults.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 30 * time.Second
	}

	d := &Dispatcher{
		opts:  opts,
		jobs:  make(chan job, opts.QueueSize),
		sleep: sleepCtx,
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue schedules run for asynchronous execution. target is the chat the
// call addresses and is only used for logging. run may be invoked more
// than once.
func (d *Dispatcher) Enqueue(ctx context.Context, action string, target int64, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.done {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, target: target, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// SentCount returns the number of jobs that eventually succeeded.
func (d *Dispatcher) SentCount() uint64 { return d.sent.Load() }

// ErrorCount returns the number of jobs that gave up.
func (d *Dispatcher) ErrorCount() uint64 { return d.errs.Load() }

// Close stops accepting jobs and waits until the queued ones are processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return
	}
	d.done = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.handle(j)
	}
}

func (d *Dispatcher) handle(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// Queued jobs outlive the update that produced them.
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = j.run(); err == nil {
			d.sent.Add(1)
			attrs := append(jobAttrs(j), slog.Duration("duration", logger.Took(start)))
			if attempt > 1 {
				attrs = append(attrs, slog.Int("attempt", attempt))
			}
			logger.Debug(ctx, component, "send.ok", attrs...)
			return
		}
		if attempt == attempts {
			break
		}
		delay, retry := d.retryDelay(err, attempt)
		if !retry {
			break
		}
		logger.Debug(ctx, component, "send.retry", append(jobAttrs(j),
			slog.Int("attempt", attempt),
			slog.String("error_kind", classifyError(err)),
			slog.Duration("delay", delay),
		)...)
		if serr := d.sleep(jobCtx, delay); serr != nil {
			err = errors.Join(err, serr)
			break
		}
	}

	d.errs.Add(1)
	logger.Error(ctx, component, "send.fail", append(jobAttrs(j),
		slog.String("status", "fail"),
		slog.String("error", sanitizeErrorMessage(err)),
		slog.String("error_kind", classifyError(err)),
		slog.Int("attempts", attempts),
		slog.Duration("duration", logger.Took(start)),
	)...)
}

// retryDelay decides whether err is worth another attempt and how long to wait.
func (d *Dispatcher) retryDelay(err error, attempt int) (time.Duration, bool) {
	if wait, ok := floodWait(err); ok {
		return wait, true
	}
	if netutil.ShouldRetry(err) {
		return d.opts.RetryBackoff * time.Duration(attempt), true
	}
	return 0, false
}

func jobAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.target != 0 {
		attrs = append(attrs, slog.Int64("target", j.target))
	}
	return attrs
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
