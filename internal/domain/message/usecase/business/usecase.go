package business

import (
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

// UseCase implements the ingestion and forward pipelines
type UseCase struct {
	clients  domain.ClientProvider
	repo     deps.MessageRepository
	producer deps.EventProducer
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewUseCase creates a new message use case
func NewUseCase(
	clients domain.ClientProvider,
	repo deps.MessageRepository,
	producer deps.EventProducer,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		clients:  clients,
		repo:     repo,
		producer: producer,
		logger:   logger.With().Str("component", "message_usecase").Logger(),
		metrics:  m,
	}
}
