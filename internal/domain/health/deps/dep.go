package deps

import (
	"context"

	sessionentities "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/entities"
)

// ConnectionState reports the lifecycle state of the Telegram connection
type ConnectionState interface {
	State() sessionentities.State
}

// DatabasePinger checks that the database accepts connections
type DatabasePinger interface {
	PingContext(ctx context.Context) error
}

// ProducerHealth reports whether events can be published
type ProducerHealth interface {
	IsHealthy() bool
}
