package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

const (
	fileQueueSize   = 1000
	fileFlushPeriod = 2 * time.Second
)

// AsyncFileWriter never blocks the caller; lines are dropped while the queue
// is full. Only the drain goroutine touches the buffered writer.
type AsyncFileWriter struct {
	file    *os.File
	buf     *bufio.Writer
	queue   chan []byte
	closing chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
	dropped atomic.Int64
}

func NewAsyncFileWriter(logFile string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	w := &AsyncFileWriter{
		file:    file,
		buf:     bufio.NewWriterSize(file, bufferSize),
		queue:   make(chan []byte, fileQueueSize),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.drain()
	return w, nil
}

func (w *AsyncFileWriter) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, os.ErrClosed
	}
	select {
	case w.queue <- append([]byte(nil), p...):
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped reports how many lines were discarded because the queue was full.
func (w *AsyncFileWriter) Dropped() int64 {
	return w.dropped.Load()
}

func (w *AsyncFileWriter) drain() {
	defer close(w.stopped)
	ticker := time.NewTicker(fileFlushPeriod)
	defer ticker.Stop()

	for {
		select {
		case line := <-w.queue:
			w.write(line)
		case <-ticker.C:
			_ = w.buf.Flush()
		case <-w.closing:
			for {
				select {
				case line := <-w.queue:
					w.write(line)
				default:
					_ = w.buf.Flush()
					return
				}
			}
		}
	}
}

func (w *AsyncFileWriter) write(line []byte) {
	if _, err := w.buf.Write(line); err != nil {
		fmt.Fprintln(os.Stderr, "error writing log data to file:", err)
	}
}

// Close drains pending lines before closing the file. It is safe to call twice.
func (w *AsyncFileWriter) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	close(w.closing)
	<-w.stopped
	_ = w.file.Close()
}
