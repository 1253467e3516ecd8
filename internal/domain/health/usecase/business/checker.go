package business

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/health/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/health/entities"
	sessionentities "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/entities"
)

// pingTimeout bounds the database probe of one health check
const pingTimeout = 2 * time.Second

// Checker aggregates component health
type Checker struct {
	connection deps.ConnectionState
	db         deps.DatabasePinger
	producer   deps.ProducerHealth
	logger     zerolog.Logger
	now        func() time.Time
}

// NewChecker creates a new health checker
func NewChecker(
	connection deps.ConnectionState,
	db deps.DatabasePinger,
	producer deps.ProducerHealth,
	logger zerolog.Logger,
) *Checker {
	return &Checker{
		connection: connection,
		db:         db,
		producer:   producer,
		logger:     logger.With().Str("component", "health").Logger(),
		now:        time.Now,
	}
}

// Check probes every component. The Telegram connection and the producer only
// degrade the service, the database makes it unhealthy.
func (c *Checker) Check(ctx context.Context) entities.Report {
	components := []entities.ComponentHealth{
		c.checkDatabase(ctx),
		c.checkTelegram(),
		c.checkProducer(),
	}

	return entities.Report{
		Status:     overallStatus(components),
		Timestamp:  c.now().UTC(),
		Components: components,
	}
}

func (c *Checker) checkDatabase(ctx context.Context) entities.ComponentHealth {
	component := entities.ComponentHealth{Name: "database", Critical: true, Healthy: true}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.db.PingContext(pingCtx); err != nil {
		c.logger.Warn().Err(err).Msg("Database ping failed")
		component.Healthy = false
		component.Message = "database is not reachable"
	}

	return component
}

func (c *Checker) checkTelegram() entities.ComponentHealth {
	state := c.connection.State()
	component := entities.ComponentHealth{
		Name:    "telegram",
		Healthy: state == sessionentities.StateConnected,
	}
	if !component.Healthy {
		component.Message = "telegram client is " + string(state)
	}
	return component
}

func (c *Checker) checkProducer() entities.ComponentHealth {
	component := entities.ComponentHealth{
		Name:    "kafka_producer",
		Healthy: c.producer != nil && c.producer.IsHealthy(),
	}
	if !component.Healthy {
		component.Message = "Kafka producer is not healthy"
	}
	return component
}

// overallStatus determines overall health status based on component health
func overallStatus(components []entities.ComponentHealth) entities.Status {
	allHealthy := true
	anyHealthy := false

	for _, component := range components {
		if !component.Healthy {
			if component.Critical {
				return entities.StatusUnhealthy
			}
			allHealthy = false
		} else {
			anyHealthy = true
		}
	}

	if allHealthy {
		return entities.StatusHealthy
	} else if anyHealthy {
		return entities.StatusDegraded
	}

	return entities.StatusUnhealthy
}
