package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Queue buffers outgoing messages and delivers them in the background.
type Queue interface {
	Add(msg Message)
	Start()
	Stop()
}

// queue holds buffered messages and flushes them when the buffer reaches
// size, on every tick, and once more on Stop.
type queue struct {
	log      *zap.Logger
	mailer   Mailer
	size     int
	timeout  time.Duration
	pending  []Message
	stopped  bool
	mu       sync.Mutex
	ticker   *time.Ticker
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	flushes  sync.WaitGroup
}

// NewQueue initializes a Queue delivering through mailer.
func NewQueue(mailer Mailer, size int, interval time.Duration, logger *zap.Logger) Queue {
	if size < 1 {
		size = 1
	}
	return &queue{
		log:     logger,
		mailer:  mailer,
		size:    size,
		timeout: 30 * time.Second,
		ticker:  time.NewTicker(interval),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Add appends a message to the buffer. Messages added after Stop are dropped.
func (q *queue) Add(msg Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		q.log.Warn("email dropped, queue stopped",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return
	}
	q.pending = append(q.pending, msg)
	if len(q.pending) >= q.size {
		q.flushes.Add(1)
		go func() {
			defer q.flushes.Done()
			q.flush()
		}()
	}
}

// Start runs the periodic flush ticker until Stop is called.
func (q *queue) Start() {
	defer close(q.done)
	for {
		select {
		case <-q.ticker.C:
			q.flush()
		case <-q.quit:
			q.ticker.Stop()
			q.flushes.Wait()
			q.flush()
			return
		}
	}
}

// Stop flushes what is left and waits for Start to return.
func (q *queue) Stop() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		q.mu.Unlock()
		close(q.quit)
	})
	<-q.done
}

func (q *queue) flush() {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	start := time.Now()
	failed := 0
	for _, msg := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := q.mailer.Send(ctx, msg)
		cancel()
		if err != nil {
			failed++
			q.log.Error("email delivery failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	}

	q.log.Info("email batch flushed",
		zap.Int("size", len(batch)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}
