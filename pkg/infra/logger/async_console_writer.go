package logger

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// AsyncConsoleHook mirrors entries at or above minLevel to out from a single
// goroutine. Lines are dropped while the queue is full.
type AsyncConsoleHook struct {
	out     io.Writer
	levels  []logrus.Level
	lines   chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64
}

func NewAsyncConsoleHook(bufferSize int) *AsyncConsoleHook {
	return NewAsyncConsoleHookWithWriter(os.Stdout, logrus.TraceLevel, bufferSize)
}

func NewAsyncConsoleHookWithWriter(out io.Writer, minLevel logrus.Level, bufferSize int) *AsyncConsoleHook {
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= minLevel {
			levels = append(levels, l)
		}
	}
	h := &AsyncConsoleHook{
		out:    out,
		levels: levels,
		lines:  make(chan string, bufferSize),
		done:   make(chan struct{}),
	}
	h.wg.Add(1)
	go h.drain()
	return h
}

func (h *AsyncConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	select {
	case h.lines <- line:
	default:
		h.dropped.Add(1)
	}
	return nil
}

func (h *AsyncConsoleHook) Levels() []logrus.Level {
	return h.levels
}

// Dropped reports how many lines were discarded because the queue was full.
func (h *AsyncConsoleHook) Dropped() int64 {
	return h.dropped.Load()
}

func (h *AsyncConsoleHook) drain() {
	defer h.wg.Done()
	for {
		select {
		case line := <-h.lines:
			_, _ = io.WriteString(h.out, line)
		case <-h.done:
			for {
				select {
				case line := <-h.lines:
					_, _ = io.WriteString(h.out, line)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncConsoleHook) Close() {
	h.once.Do(func() {
		close(h.done)
		h.wg.Wait()
	})
}
