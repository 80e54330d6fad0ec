// Package worker holds the background consumers that feed the audit trail's
// secondary sinks and keep the rate limit table small.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/service/queue"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

const (
	defaultMaxMessages = 10 // Process up to 10 messages at a time
	defaultWaitTime    = 20 // Long polling: wait up to 20 seconds for messages
)

// Queue is the part of queue.SQSService the workers consume from.
type Queue interface {
	ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32, waitTimeSeconds int32) ([]queue.ReceivedMessage, error)
	DeleteMessage(ctx context.Context, queueURL string, receiptHandle *string) error
}

// poller runs handle for every message on one queue. A message is deleted
// only after handle succeeds; failures stay on the queue for redelivery.
type poller struct {
	queue        Queue
	queueURL     string
	handle       func(ctx context.Context, msg queue.Message) error
	logger       *logger.Logger
	workerCount  int
	pollInterval time.Duration
	maxMessages  int32
	waitTime     int32
	shutdownChan chan struct{}
	waitGroup    sync.WaitGroup
}

func newPoller(q Queue, queueURL string, log *logger.Logger, workerCount int, pollInterval time.Duration) *poller {
	return &poller{
		queue:        q,
		queueURL:     queueURL,
		logger:       log,
		workerCount:  max(workerCount, 1),
		pollInterval: pollInterval,
		maxMessages:  defaultMaxMessages,
		waitTime:     defaultWaitTime,
		shutdownChan: make(chan struct{}),
	}
}

func (p *poller) Start() {
	p.logger.Info("Starting workers", zap.Int("count", p.workerCount), zap.String("queue", p.queueURL))

	for i := 0; i < p.workerCount; i++ {
		p.waitGroup.Add(1)
		go p.runWorker(i)
	}
}

func (p *poller) Stop() {
	p.logger.Info("Stopping workers...")
	close(p.shutdownChan)
	p.waitGroup.Wait()
	p.logger.Info("All workers stopped")
}

func (p *poller) runWorker(workerID int) {
	defer p.waitGroup.Done()

	p.logger.Infof("Worker %d started", workerID)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.shutdownChan:
			p.logger.Infof("Worker %d shutting down", workerID)
			return
		case <-ticker.C:
			if err := p.poll(context.Background()); err != nil {
				p.logger.Errorf("Worker %d failed to process messages: %v", workerID, err)
			}
		}
	}
}

// poll receives and handles one batch.
func (p *poller) poll(ctx context.Context) error {
	messages, err := p.queue.ReceiveMessages(ctx, p.queueURL, p.maxMessages, p.waitTime)
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range messages {
		if err := p.handle(ctx, msg.Message); err != nil {
			p.logger.Error("Failed to process message", err,
				zap.String("type", string(msg.Message.Type)),
				zap.String("tenant_id", msg.Message.TenantID))
			continue
		}

		if err := p.queue.DeleteMessage(ctx, p.queueURL, msg.ReceiptHandle); err != nil {
			p.logger.Error("Failed to delete message", err)
		}
	}

	return nil
}
