package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/civicbook/internal/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads messages until ctx is done. Undecodable events are logged
// and skipped; handler errors stop the loop.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, RecordEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		event, err := DecodeRecordEvent(msg.Value)
		if err != nil {
			c.log.Warn("Skipping malformed event",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}
