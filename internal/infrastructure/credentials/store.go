package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeySessionToken is the credentials row holding the exported Telegram session.
const KeySessionToken = "telegram_session"

// CredentialModel is a single key/value secret.
type CredentialModel struct {
	Key       string    `gorm:"column:key;primaryKey;size:64"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (CredentialModel) TableName() string {
	return "credentials"
}

// Store persists credentials in the database
type Store struct {
	db *gorm.DB
}

// NewStore creates a new credential store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the value stored under key, or "" when there is none.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var model CredentialModel
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load credential %q: %w", key, err)
	}

	return model.Value, nil
}

// Set inserts or replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	model := CredentialModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to store credential %q: %w", key, err)
	}

	return nil
}

// SessionToken returns the persisted session token, "" when no login happened yet.
func (s *Store) SessionToken(ctx context.Context) (string, error) {
	return s.Get(ctx, KeySessionToken)
}

// SaveSessionToken replaces the persisted session token.
func (s *Store) SaveSessionToken(ctx context.Context, token string) error {
	return s.Set(ctx, KeySessionToken, token)
}
