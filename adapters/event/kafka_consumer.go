package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/internal/config"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SyncEventHandler processes one decoded event. A returned error is retried
// with backoff; once the tries run out the event is logged and committed, so
// the partition keeps moving and the cache TTL covers the lost invalidation.
type SyncEventHandler func(ctx context.Context, ev service.SyncJobEvent) error

const defaultHandleTries = 3

type SyncEventConsumer struct {
	reader   messageReader
	logger   logger.Logger
	maxTries uint
	backOff  func() backoff.BackOff
}

func exponentialBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

func NewSyncEventConsumer(cfg config.Config, log logger.Logger) (*SyncEventConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicSyncJobEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &SyncEventConsumer{
		reader:   reader,
		logger:   log,
		maxTries: defaultHandleTries,
		backOff:  exponentialBackOff,
	}, nil
}

// Run blocks until ctx is cancelled or the reader fails for good.
func (c *SyncEventConsumer) Run(ctx context.Context, handle SyncEventHandler) error {
	c.logger.Info("Worker listening", zap.String("topic", TopicSyncJobEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, kafka.ErrGroupClosed) {
				return err
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		ev, err := DecodeSyncJobEvent(msg)
		if err != nil {
			c.logger.Warn("Skipping undecodable sync job event",
				zap.Error(err),
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
			)
			c.commit(ctx, msg)
			continue
		}

		if err := c.handle(ctx, handle, ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Giving up on sync job event", err,
				zap.Int64(logger.FieldJobID, ev.JobID),
				zap.String(logger.FieldEvent, string(ev.Type)),
				zap.Int64("offset", msg.Offset),
			)
		}
		c.commit(ctx, msg)
	}
}

func (c *SyncEventConsumer) handle(ctx context.Context, handle SyncEventHandler, ev service.SyncJobEvent) error {
	tries := c.maxTries
	if tries == 0 {
		tries = defaultHandleTries
	}
	newBackOff := c.backOff
	if newBackOff == nil {
		newBackOff = exponentialBackOff
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := handle(ctx, ev)
		if err != nil {
			c.logger.Warn("Failed to process sync job event",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int64(logger.FieldJobID, ev.JobID),
			)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(newBackOff()), backoff.WithMaxTries(tries))
	return err
}

func (c *SyncEventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}

func (c *SyncEventConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", err)
	}
}
