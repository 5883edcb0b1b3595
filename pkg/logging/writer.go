package logging

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is the default AsyncWriter queue capacity, in writes.
const DefaultBufferSize = 4096

// ErrWriterClosed is returned by Write after Close.
var ErrWriterClosed = errors.New("logging: writer closed")

// AsyncWriter decouples callers from a slow destination. Write copies p onto a
// bounded queue and returns; a single goroutine drains the queue in order.
// When the queue is full Write blocks until the consumer catches up.
type AsyncWriter struct {
	dst   io.Writer
	queue chan []byte
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	failures atomic.Int64
	lastErr  atomic.Value
}

// NewAsyncWriter starts the consumer goroutine draining into dst.
func NewAsyncWriter(dst io.Writer, capacity int) *AsyncWriter {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	w := &AsyncWriter{
		dst:   dst,
		queue: make(chan []byte, capacity),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Write implements io.Writer. slog handlers reuse their buffers, so p is copied.
func (w *AsyncWriter) Write(p []byte) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return 0, ErrWriterClosed
	}

	buf := make([]byte, len(p))
	copy(buf, p)
	w.queue <- buf
	return len(p), nil
}

func (w *AsyncWriter) run() {
	defer close(w.done)
	for buf := range w.queue {
		if _, err := w.dst.Write(buf); err != nil {
			w.failures.Add(1)
			w.lastErr.Store(err)
		}
	}
}

// Pending returns the number of queued writes not yet drained.
func (w *AsyncWriter) Pending() int {
	return len(w.queue)
}

// Failures returns how many drained writes the destination rejected.
func (w *AsyncWriter) Failures() int64 {
	return w.failures.Load()
}

// Err returns the most recent destination error, if any.
func (w *AsyncWriter) Err() error {
	if err, ok := w.lastErr.Load().(error); ok {
		return err
	}
	return nil
}

// Close stops accepting writes, drains the queue and closes the destination
// if it is an io.Closer. Close is idempotent.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	<-w.done
	if c, ok := w.dst.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
