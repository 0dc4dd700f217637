package processor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investadvisor/server/config"
	"investadvisor/server/internal/database"
	"investadvisor/server/internal/models"
	"investadvisor/server/internal/queue"
)

// Transactor is the part of *gorm.DB the processor needs
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchProcessor accumulates prediction records from the queue and writes
// them in batches
type BatchProcessor struct {
	db        Transactor
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.PredictionQueue
	mu        sync.Mutex
	pending   []*models.PredictionRecord
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Transactor, queue *queue.PredictionQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the queue and begins the periodic flush
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.add)

	p.waitGroup.Add(1)
	go p.flushLoop()
}

// Stop ends the periodic flush and writes whatever is still pending.
// Close the queue first so nothing arrives after the final flush.
func (p *BatchProcessor) Stop() error {
	p.cancel()
	p.waitGroup.Wait()
	return p.Flush()
}

// add collects a batch from the queue and writes once the size limit is hit
func (p *BatchProcessor) add(batch []*models.PredictionRecord) error {
	p.mu.Lock()
	p.pending = append(p.pending, batch...)
	if len(p.pending) < p.config.BatchProcessing.MaxBatchSize {
		p.mu.Unlock()
		return nil
	}
	full := p.pending
	p.pending = nil
	p.mu.Unlock()

	return p.processBatch(full)
}

// Flush writes all pending records
func (p *BatchProcessor) Flush() error {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return p.processBatch(batch)
}

// Pending returns the number of records waiting to be written
func (p *BatchProcessor) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *BatchProcessor) flushLoop() {
	defer p.waitGroup.Done()

	ticker := time.NewTicker(time.Duration(p.config.BatchProcessing.MaxBatchWaitTime) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if err := p.Flush(); err != nil {
				p.logger.WithError(err).Error("Periodic flush failed")
			}
		}
	}
}

// processBatch writes a single batch in a transaction with retry logic
func (p *BatchProcessor) processBatch(batch []*models.PredictionRecord) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.InsertPredictions(tx, batch); err != nil {
				return fmt.Errorf("failed to insert predictions batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d predictions", len(batch))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries+1, err)
}
