package deps

import (
	"context"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/entities"
)

// DialogRepository defines storage for synced dialogs
type DialogRepository interface {
	// UpsertAll writes dialogs keyed by (dialog id, type) in one statement
	UpsertAll(ctx context.Context, dialogs []domain.Dialog) error
	// Get returns the stored dialog or nil when absent
	Get(ctx context.Context, dialogID int64, dialogType entities.Type) (*entities.DialogRecord, error)
	// List returns every stored dialog ordered by last activity, newest first
	List(ctx context.Context) ([]*entities.DialogRecord, error)
}

// DialogService is the use case consumed by the HTTP delivery
type DialogService interface {
	SyncDialogs(ctx context.Context) ([]*entities.DialogRecord, error)
	GetDialog(ctx context.Context, dialogID int64, dialogType entities.Type) (*entities.DialogRecord, error)
}
