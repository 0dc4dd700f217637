package queue

import (
	"errors"
	"investadvisor/server/internal/models"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// PredictionQueue is an in-memory queue of prediction record batches
type PredictionQueue struct {
	items    chan []*models.PredictionRecord
	done     chan struct{}
	stopped  chan struct{}
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.PredictionRecord) error
}

// NewPredictionQueue creates a new queue with the specified buffer size
func NewPredictionQueue(bufferSize int, logger *logrus.Logger) *PredictionQueue {
	return &PredictionQueue{
		items:    make(chan []*models.PredictionRecord, bufferSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*models.PredictionRecord) error, 0),
	}
}

// Push adds a batch of records to the queue without blocking
func (q *PredictionQueue) Push(records []*models.PredictionRecord) error {
	// The read lock is held across the send so Close cannot race it
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- records:
		q.logger.WithField("batch_size", len(records)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *PredictionQueue) Subscribe(handler func([]*models.PredictionRecord) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue
func (q *PredictionQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	go q.process()
}

// process handles the queue processing loop
func (q *PredictionQueue) process() {
	defer close(q.stopped)
	for {
		select {
		case <-q.done:
			q.drain()
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

// drain hands over whatever is still buffered after Close
func (q *PredictionQueue) drain() {
	for {
		select {
		case batch := <-q.items:
			q.processBatch(batch)
		default:
			return
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *PredictionQueue) processBatch(batch []*models.PredictionRecord) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue, waits for buffered batches to be handled and
// prevents new items from being added
func (q *PredictionQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	close(q.done)
	q.mu.Unlock()

	if started {
		<-q.stopped
	}
	return nil
}

// Len returns the current number of batches in the queue
func (q *PredictionQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *PredictionQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
