package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/placehub/anonqa-service/internal/config"
)

// Producer publishes answer lifecycle events for the notification service.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg *config.Config) *Producer {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.TopicAnswerEvent,
		Balancer: &kafka.LeastBytes{},
	})
	return &Producer{writer: w}
}

func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{Key: []byte(key), Value: value, Time: time.Now()}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error { return p.writer.Close() }
