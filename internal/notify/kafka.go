package notify

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes events to a single topic keyed by event name.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(broker, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			// Fire-and-forget: the engine never waits on broker acks.
			RequiredAcks: kafka.RequireNone,
			Async:        true,
		},
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Deliver(ctx context.Context, event string, payload []byte) error {
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event),
		Value: payload,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
