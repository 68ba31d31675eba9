package sender

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func newTestDispatcher(opts Options) (*Dispatcher, *sleepRecorder) {
	d := NewDispatcher(opts)
	rec := &sleepRecorder{}
	d.sleep = rec.sleep
	return d, rec
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d, rec := newTestDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Second})
	var calls int
	err := d.Enqueue(context.Background(), "send.text", 42, func() error {
		calls++
		if calls < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()

	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if d.SentCount() != 1 || d.ErrorCount() != 0 {
		t.Fatalf("sent=%d errs=%d", d.SentCount(), d.ErrorCount())
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("delays = %v, want %v", rec.delays, want)
	}
	for i := range want {
		if rec.delays[i] != want[i] {
			t.Fatalf("delays = %v, want %v", rec.delays, want)
		}
	}
}

func TestDispatcherHonoursFloodWait(t *testing.T) {
	d, rec := newTestDispatcher(Options{Workers: 1, MaxRetries: 1})
	var calls int
	_ = d.Enqueue(context.Background(), "send.notify", 7, func() error {
		calls++
		if calls == 1 {
			return tele.FloodError{RetryAfter: 5}
		}
		return nil
	})
	d.Close()

	if calls != 2 || d.SentCount() != 1 {
		t.Fatalf("calls=%d sent=%d", calls, d.SentCount())
	}
	if len(rec.delays) != 1 || rec.delays[0] != 5*time.Second {
		t.Fatalf("delays = %v", rec.delays)
	}
}

func TestDispatcherGivesUpOnPermanentErrors(t *testing.T) {
	d, rec := newTestDispatcher(Options{Workers: 1, MaxRetries: 3})
	var calls int
	_ = d.Enqueue(context.Background(), "send.text", 1, func() error {
		calls++
		return &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}
	})
	d.Close()

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if d.ErrorCount() != 1 || len(rec.delays) != 0 {
		t.Fatalf("errs=%d delays=%v", d.ErrorCount(), rec.delays)
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	d.Close()
	if err := d.Enqueue(context.Background(), "send.text", 1, func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})
	_ = d.Enqueue(context.Background(), "block", 0, func() error {
		close(started)
		<-release
		return nil
	})
	<-started
	if err := d.Enqueue(context.Background(), "fill", 0, func() error { return nil }); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if err := d.Enqueue(context.Background(), "overflow", 0, func() error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	close(release)
	d.Close()
	if d.SentCount() != 2 {
		t.Fatalf("sent = %d, want 2", d.SentCount())
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, "dial"},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.telegram.org"}, "dns"},
		{"forbidden", &tele.Error{Code: 403}, "forbidden"},
		{"server", &tele.Error{Code: 502}, "http_5xx"},
		{"message code", errors.New("telegram: chat not found (400)"), "http_4xx"},
		{"other", errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyError(tc.err); got != tc.want {
				t.Fatalf("classifyError = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAbb-cc_DD/sendMessage": EOF`)
	got := sanitizeErrorMessage(err)
	want := `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`
	if got != want {
		t.Fatalf("got %q", got)
	}
}
