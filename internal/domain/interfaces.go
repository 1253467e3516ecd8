package domain

import (
	"context"
)

// StreamOptions bounds a history stream. Zero values mean no bound.
type StreamOptions struct {
	Limit int
	MinID int
}

// MessageIterator yields messages in the order the transport returns them (newest first)
type MessageIterator interface {
	Next(ctx context.Context) bool
	Value() Message
	Err() error
}

// Transport is the capability the service needs from the Telegram network.
// One authenticated Transport is live per process; it is owned by the session ConnectionManager.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	// SendCode requests a login code and returns the code hash needed by SignIn
	SendCode(ctx context.Context, phone string) (string, error)
	// SignIn completes a login. It returns ErrSecondFactorRequired when a password is needed but empty.
	SignIn(ctx context.Context, phone, code, codeHash, password string) error
	// ExportSession returns the session token of the authorized transport
	ExportSession(ctx context.Context) (string, error)
	Self(ctx context.Context) (*Account, error)

	// ResolveEntity resolves a username or numeric id. It returns ErrPeerNotFound when nothing matches.
	ResolveEntity(ctx context.Context, ref string) (*Entity, error)
	// PeerFromID builds an unresolved entity for a bare numeric id
	PeerFromID(id int64) *Entity
	StreamMessages(ctx context.Context, entity *Entity, opts StreamOptions) MessageIterator
	ForwardMessages(ctx context.Context, from, to *Entity, ids []int) error
	Dialogs(ctx context.Context) ([]Dialog, error)
}

// TransportOptions configures a new transport
type TransportOptions struct {
	APIID        int
	APIHash      string
	SessionToken string
	Proxy        *ProxyConfig
}

// TransportFactory opens transports. The ConnectionManager uses it for both the live
// transport and short-lived login transports.
type TransportFactory interface {
	New(opts TransportOptions) (Transport, error)
}

// TransportFactoryFunc adapts a function to TransportFactory
type TransportFactoryFunc func(opts TransportOptions) (Transport, error)

// New calls f(opts)
func (f TransportFactoryFunc) New(opts TransportOptions) (Transport, error) {
	return f(opts)
}

// ClientProvider hands out the live, connected transport
type ClientProvider interface {
	ActiveClient(ctx context.Context) (Transport, error)
}
