package entities

import (
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
)

// MinSessionTokenLength is the shortest exported session token that is
// considered plausible. Shorter tokens are rejected without dialing.
const MinSessionTokenLength = 50

// State is the connection manager lifecycle state
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateAuthPending  State = "auth_pending"
)

// Status is a point-in-time snapshot of the connection
type Status struct {
	Connected      bool                `json:"is_connected"`
	State          State               `json:"state"`
	ProxyEnabled   bool                `json:"proxy_enabled"`
	LastActivity   *time.Time          `json:"last_activity,omitempty"`
	LastError      string              `json:"last_error,omitempty"`
	SessionValid   bool                `json:"session_valid"`
	LoginPending   bool                `json:"login_pending"`
	ProxyDetails   *domain.ProxyConfig `json:"proxy_details,omitempty"`
	AccountDetails *domain.Account     `json:"details,omitempty"`
}

// PlausibleToken reports whether token is long enough to be an exported session.
func PlausibleToken(token string) bool {
	return len(token) >= MinSessionTokenLength
}
