package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/internal/config"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

const TopicSyncJobEvents = "sync.job.events"

type KafkaProducerClient struct {
	SyncJobEventsWriter *kafka.Writer
	logger              logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// Async writes: a slow broker must never hold up the tracker.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicSyncJobEvents,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("Failed to deliver sync job events", err, zap.Int(logger.FieldCount, len(messages)))
			}
		},
	}

	log.Info("Initialize Kafka Producers successfully.")

	return &KafkaProducerClient{
		SyncJobEventsWriter: writer,
		logger:              log,
	}, nil
}

// Publish keys messages by job id so one job's events stay ordered.
func (c *KafkaProducerClient) Publish(ctx context.Context, ev service.SyncJobEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal sync job event: %w", err)
	}
	return c.SyncJobEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.JobID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	})
}

func (c *KafkaProducerClient) Close() {
	if c.SyncJobEventsWriter != nil {
		if err := c.SyncJobEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// DecodeSyncJobEvent parses a message read from TopicSyncJobEvents.
func DecodeSyncJobEvent(msg kafka.Message) (service.SyncJobEvent, error) {
	var ev service.SyncJobEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return service.SyncJobEvent{}, fmt.Errorf("unmarshal sync job event: %w", err)
	}
	if ev.Type == "" || ev.JobID == 0 {
		return service.SyncJobEvent{}, fmt.Errorf("sync job event missing type or job id")
	}
	return ev, nil
}

var _ service.SyncEventPublisher = (*KafkaProducerClient)(nil)
