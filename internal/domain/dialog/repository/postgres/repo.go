package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBatchSize keeps a single statement under the driver's bind parameter limit
const upsertBatchSize = 500

// Repository implements deps.DialogRepository using PostgreSQL
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL dialog repository
func NewRepository(db *gorm.DB) deps.DialogRepository {
	return &Repository{db: db}
}

// UpsertAll inserts dialogs or overwrites existing rows with the same (dialog_id, telegram_type)
func (r *Repository) UpsertAll(ctx context.Context, dialogs []domain.Dialog) error {
	if len(dialogs) == 0 {
		return nil
	}

	models := make([]*entities.DialogModel, 0, len(dialogs))
	for _, d := range dialogs {
		models = append(models, entities.NewDialogModel(d))
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dialog_id"}, {Name: "telegram_type"}},
			UpdateAll: true,
		}).
		CreateInBatches(models, upsertBatchSize)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert dialogs: %w", result.Error)
	}

	return nil
}

// Get retrieves a dialog by its natural key
func (r *Repository) Get(ctx context.Context, dialogID int64, dialogType entities.Type) (*entities.DialogRecord, error) {
	var model entities.DialogModel
	err := r.db.WithContext(ctx).
		Where("dialog_id = ? AND telegram_type = ?", dialogID, string(dialogType)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find dialog: %w", err)
	}

	return model.ToEntity(), nil
}

// List retrieves all stored dialogs
func (r *Repository) List(ctx context.Context) ([]*entities.DialogRecord, error) {
	var models []entities.DialogModel
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "last_activity"}, Desc: true}).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dialogs: %w", err)
	}

	records := make([]*entities.DialogRecord, 0, len(models))
	for i := range models {
		records = append(records, models[i].ToEntity())
	}

	return records, nil
}
