package broker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes notification events to a single topic.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Timeout = 5 * time.Second
	prod, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newKafkaPublisher(prod, topic), nil
}

func newKafkaPublisher(prod sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: prod, topic: topic}
}

// Publish sends payload keyed by key, so events for one recipient keep their order.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send to %s: %w", p.topic, err)
	}
	slog.Debug("message stored", "topic", p.topic, "partition", partition, "offset", offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// LogPublisher stands in when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, key string, payload []byte) error {
	slog.Info("notification event", "key", key, "payload", string(payload))
	return nil
}

func (LogPublisher) Close() error { return nil }
