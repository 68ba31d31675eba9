package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// writeReq is a line to write, or a flush barrier when ack is set.
type writeReq struct {
	line []byte
	ack  chan error
}

// asyncWriter serializes log lines from many goroutines onto buffered sinks.
// Write blocks when the queue is full, so lines are never dropped.
type asyncWriter struct {
	reqs chan writeReq
	done chan struct{}

	mu     sync.RWMutex // guards closed against concurrent sends
	closed bool

	sinks []*bufio.Writer
	errMu sync.Mutex
	err   error
}

func newAsyncWriter(outputs []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = writerBufSize
	}
	w := &asyncWriter{
		reqs: make(chan writeReq, 256),
		done: make(chan struct{}),
	}
	for _, out := range outputs {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for req := range w.reqs {
		if req.ack != nil {
			req.ack <- w.flush()
			continue
		}
		for _, s := range w.sinks {
			if _, err := s.Write(req.line); err != nil {
				w.fail(err)
				break
			}
		}
		// Flush per line while nothing else is waiting.
		if len(w.reqs) == 0 {
			w.fail(w.flush())
		}
	}
	w.fail(w.flush())
}

func (w *asyncWriter) send(req writeReq) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.reqs <- req
	return nil
}

// Write copies p and queues it.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	return w.send(writeReq{line: append([]byte(nil), p...)})
}

// Flush blocks until every line queued before it has reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	if err := w.send(writeReq{ack: ack}); err != nil {
		if errors.Is(err, errWriterClosed) {
			return w.firstErr()
		}
		return err
	}
	if err := <-ack; err != nil {
		return err
	}
	return w.firstErr()
}

// Close drains the queue and returns the first write error.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.reqs)
	}
	w.mu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) flush() error {
	var errs []error
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
