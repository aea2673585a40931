package logger

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// output is a destination that accepts records at or above min.
type output struct {
	w   io.Writer
	min slog.Level
}

type line struct {
	level slog.Level
	data  []byte
}

// asyncWriter moves formatting output off the caller's goroutine. A single
// loop owns the buffered sinks, so sinks need no locking.
type asyncWriter struct {
	queue chan line
	flush chan chan error
	done  chan struct{}

	closeMu sync.RWMutex
	closed  bool

	sinks []*bufio.Writer
	mins  []slog.Level

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(outputs []output, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue: make(chan line, 256),
		flush: make(chan chan error),
		done:  make(chan struct{}),
	}
	for _, o := range outputs {
		if o.w == nil {
			continue
		}
		w.sinks = append(w.sinks, bufio.NewWriterSize(o.w, bufSize))
		w.mins = append(w.mins, o.min)
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case l, ok := <-w.queue:
			if !ok {
				w.setErr(w.flushAll())
				return
			}
			w.setErr(w.fanOut(l))
		case ack := <-w.flush:
			ack <- w.flushAll()
		}
	}
}

// Write queues data for every sink that accepts level. It blocks when the
// queue is full rather than dropping lines.
func (w *asyncWriter) Write(level slog.Level, data []byte) error {
	if err := w.getErr(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- line{level: level, data: append([]byte(nil), data...)}
	return nil
}

// Flush blocks until every queued line has reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flush <- ack:
		return <-ack
	case <-w.done:
		return w.getErr()
	}
}

// Close drains the queue and returns the first write error seen.
func (w *asyncWriter) Close() error {
	w.closeMu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.closeMu.Unlock()
	<-w.done
	return w.getErr()
}

func (w *asyncWriter) fanOut(l line) error {
	for i, s := range w.sinks {
		if l.level < w.mins[i] {
			continue
		}
		if _, err := s.Write(l.data); err != nil {
			return err
		}
		if err := s.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushAll() error {
	var errs []error
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) getErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
