package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/crawler-service/config"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
)

// HealthChecker reports producer health to the health endpoint
type HealthChecker interface {
	IsHealthy() bool
}

// ProducerResult exposes the producer under every interface its consumers need
type ProducerResult struct {
	fx.Out

	Producer deps.EventProducer
	Health   HealthChecker
}

// Module provides the Kafka event producer for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewEventProducerFx),
)

// NewEventProducerFx creates the event producer. Without brokers events are dropped.
func NewEventProducerFx(
	lc fx.Lifecycle,
	kafkaCfg *config.KafkaConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) (ProducerResult, error) {
	log := logger.With().Str("component", "kafka-producer").Logger()

	if len(kafkaCfg.Brokers) == 0 {
		log.Warn().Msg("KAFKA_BROKERS is empty, events will not be published")
		return ProducerResult{Producer: NoopProducer{}, Health: NoopProducer{}}, nil
	}

	producer, err := NewEventProducer(kafkaCfg, log, m)
	if err != nil {
		return ProducerResult{}, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})

	return ProducerResult{Producer: producer, Health: producer}, nil
}
