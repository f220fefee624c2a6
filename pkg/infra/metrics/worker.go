package metrics

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const queueSize = 1000

// Worker runs post-processing tasks off the request path.
type Worker interface {
	Shutdown()
	StartWorkers(n int)
	// Submit drops the task when the queue is full or the worker is closed.
	Submit(name string, task func()) bool
}

type worker struct {
	logger   *logrus.Logger
	taskChan chan func()
	ctx      context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool
	dropped  atomic.Int64
}

func NewWorker(logger *logrus.Logger) Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &worker{
		logger:   logger,
		taskChan: make(chan func(), queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *worker) Shutdown() {
	if m.closed.Swap(true) {
		return
	}
	m.logger.Info("shutting down post-processing workers")
	m.cancel()
	m.logger.WithField("dropped", m.dropped.Load()).Info("post-processing workers stopped")
}

func (m *worker) StartWorkers(n int) {
	m.logger.WithField("workers", n).Debug("starting post-processing workers")
	for i := 0; i < n; i++ {
		go func() {
			for {
				select {
				case task := <-m.taskChan:
					m.run(task)
				case <-m.ctx.Done():
					return
				}
			}
		}()
	}
}

func (m *worker) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithField("panic", r).Error("post-processing task panicked")
		}
	}()
	task()
}

func (m *worker) Submit(name string, task func()) bool {
	if m.closed.Load() {
		return false
	}
	select {
	case m.taskChan <- task:
		return true
	default:
		m.dropped.Add(1)
		m.logger.WithField("task", name).Warn("task queue is full, dropping post-processing task")
		return false
	}
}
