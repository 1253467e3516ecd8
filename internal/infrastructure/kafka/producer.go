package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/crawler-service/config"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
)

// ErrProducerClosed is returned when sending after Close
var ErrProducerClosed = errors.New("kafka producer is closed")

// EventProducer publishes message events with a synchronous producer
type EventProducer struct {
	producer sarama.SyncProducer
	config   *config.KafkaConfig
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	closed   atomic.Bool
}

// NewEventProducer connects a sync producer to the configured brokers
func NewEventProducer(cfg *config.KafkaConfig, logger zerolog.Logger, m *metrics.Metrics) (*EventProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 500 * time.Millisecond
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Version = sarama.V2_6_0_0
	saramaConfig.ClientID = "crawler-service-producer"

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create Kafka producer")
		return nil, err
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Msg("Kafka producer initialized")

	return newEventProducer(producer, cfg, logger, m), nil
}

func newEventProducer(producer sarama.SyncProducer, cfg *config.KafkaConfig, logger zerolog.Logger, m *metrics.Metrics) *EventProducer {
	return &EventProducer{
		producer: producer,
		config:   cfg,
		logger:   logger,
		metrics:  m,
	}
}

// SendMessageIngested sends message.ingested keyed by dialog and message id
func (p *EventProducer) SendMessageIngested(ctx context.Context, event *dto.MessageIngestedEvent) error {
	key := strconv.FormatInt(event.DialogID, 10) + ":" + strconv.Itoa(event.MessageID)
	return p.sendEvent(ctx, p.config.TopicMessageIngested, key, event)
}

// SendMessagesForwarded sends messages.forwarded keyed by batch id
func (p *EventProducer) SendMessagesForwarded(ctx context.Context, event *dto.MessagesForwardedEvent) error {
	return p.sendEvent(ctx, p.config.TopicMessageForwarded, event.BatchID, event)
}

func (p *EventProducer) sendEvent(ctx context.Context, topic, key string, event interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).
			Str("topic", topic).
			Msg("failed to marshal event")
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(bytes),
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.metrics.RecordKafkaError(topic)
		p.logger.Error().Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("failed to send event")
		return err
	}
	p.metrics.RecordKafkaMessage(time.Since(start).Seconds())

	p.logger.Debug().
		Str("topic", topic).
		Str("key", key).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("event sent")

	return nil
}

// IsHealthy reports whether the producer can still send
func (p *EventProducer) IsHealthy() bool {
	return p.producer != nil && !p.closed.Load()
}

// Close closes the Kafka producer
func (p *EventProducer) Close() error {
	if p.producer == nil || !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("failed to close Kafka producer")
		return err
	}

	p.logger.Info().Msg("Kafka producer closed")
	return nil
}

// NoopProducer drops every event. It is used when no brokers are configured.
type NoopProducer struct{}

func (NoopProducer) SendMessageIngested(context.Context, *dto.MessageIngestedEvent) error {
	return nil
}

func (NoopProducer) SendMessagesForwarded(context.Context, *dto.MessagesForwardedEvent) error {
	return nil
}

func (NoopProducer) IsHealthy() bool { return true }
