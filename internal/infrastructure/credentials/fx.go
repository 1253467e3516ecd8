package credentials

import (
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/session/deps"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module provides the credential store for fx DI
var Module = fx.Module("credentials",
	fx.Provide(NewStoreFx),
)

// NewStoreFx exposes the store as the session domain's credential dependency
func NewStoreFx(db *gorm.DB) deps.CredentialStore {
	return NewStore(db)
}
