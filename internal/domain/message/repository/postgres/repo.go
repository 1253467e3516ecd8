package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/deps"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements deps.MessageRepository using PostgreSQL
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL message repository
func NewRepository(db *gorm.DB) deps.MessageRepository {
	return &Repository{db: db}
}

var messageKey = []clause.Column{{Name: "dialog_id"}, {Name: "message_id"}}

// FindByKey retrieves a message by its natural key
func (r *Repository) FindByKey(ctx context.Context, dialogID int64, messageID int) (*entities.MessageRecord, error) {
	var model entities.MessageModel
	err := r.db.WithContext(ctx).
		Where("dialog_id = ? AND message_id = ?", dialogID, messageID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}

	return model.ToEntity(), nil
}

// Upsert inserts the message or overwrites every column of the existing row.
// The unique key turns concurrent double inserts into an overwrite.
func (r *Repository) Upsert(ctx context.Context, rec *entities.MessageRecord) (bool, error) {
	existing, err := r.FindByKey(ctx, rec.DialogID, rec.MessageID)
	if err != nil {
		return false, err
	}

	model := entities.NewMessageModel(rec)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   messageKey,
			UpdateAll: true,
		}).
		Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to upsert message: %w", result.Error)
	}

	return existing == nil, nil
}

// UpsertMedia inserts the media row or overwrites the existing one for the same message
func (r *Repository) UpsertMedia(ctx context.Context, rec *entities.MediaRecord) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   messageKey,
			UpdateAll: true,
		}).
		Create(entities.NewMediaModel(rec))
	if result.Error != nil {
		return fmt.Errorf("failed to upsert media: %w", result.Error)
	}

	return nil
}

// GetMedia retrieves the media of a message
func (r *Repository) GetMedia(ctx context.Context, dialogID int64, messageID int) (*entities.MediaRecord, error) {
	var model entities.MediaModel
	err := r.db.WithContext(ctx).
		Where("dialog_id = ? AND message_id = ?", dialogID, messageID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find media: %w", err)
	}

	return model.ToEntity(), nil
}

// IDsByKeyword returns ids of messages under dialogID whose text contains keyword.
// Matching is case-sensitive on every supported dialect.
func (r *Repository) IDsByKeyword(ctx context.Context, dialogID int64, keyword string) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&entities.MessageModel{}).
		Where("dialog_id = ?", dialogID).
		Where(r.containsExpr(), keyword).
		Order("message_id ASC").
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select messages by keyword: %w", err)
	}

	return ids, nil
}

// HasMediaLongerThan checks whether the message has media longer than seconds
func (r *Repository) HasMediaLongerThan(ctx context.Context, dialogID int64, messageID int, seconds int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.MediaModel{}).
		Where("dialog_id = ? AND message_id = ?", dialogID, messageID).
		Where("duration_seconds IS NOT NULL AND duration_seconds > ?", seconds).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check media duration: %w", err)
	}

	return count > 0, nil
}

// containsExpr picks a substring function; LIKE folds ASCII case on sqlite
func (r *Repository) containsExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "instr(text, ?) > 0"
	}
	return "strpos(text, ?) > 0"
}
