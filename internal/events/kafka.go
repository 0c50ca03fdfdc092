package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// KafkaPublisher publica eventos JSON con un SyncProducer de sarama
type KafkaPublisher struct {
	producer sarama.SyncProducer
	logger   *slog.Logger
}

// NewKafkaConfig devuelve la configuración del productor
func NewKafkaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "ecobazaarx"
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	return config
}

// NewKafkaPublisher conecta con los brokers, reintentando mientras arrancan
func NewKafkaPublisher(ctx context.Context, brokers []string, logger *slog.Logger) (*KafkaPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	config := NewKafkaConfig()

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= 5; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			logger.Info("Kafka producer initialized", "brokers", brokers)
			return &KafkaPublisher{producer: producer, logger: logger}, nil
		}

		logger.Warn("Waiting for Kafka", "attempt", i, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("kafka producer: %w", err)
}

// NewKafkaPublisherWithProducer envuelve un productor existente
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{producer: producer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "Event published", "topic", topic, "partition", partition, "offset", offset)
	return nil
}

// Close cierra el productor
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
