package entities

import (
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
)

// DialogModel is a GORM model for dialogs table
type DialogModel struct {
	ID                uint   `gorm:"primaryKey"`
	DialogID          int64  `gorm:"not null;uniqueIndex:uk_dialog,priority:1"`
	TelegramType      string `gorm:"not null;size:16;uniqueIndex:uk_dialog,priority:2"`
	AccessHash        *int64
	Title             *string
	Username          *string `gorm:"size:64"`
	Verified          bool    `gorm:"not null"`
	Bot               bool    `gorm:"not null"`
	ParticipantsCount *int
	LastMessageID     *int
	LastActivity      *time.Time
	UnreadCount       int       `gorm:"not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (DialogModel) TableName() string {
	return "dialogs"
}

// ToEntity converts DB model to domain entity
func (m *DialogModel) ToEntity() *DialogRecord {
	return &DialogRecord{
		DialogID:          m.DialogID,
		Type:              Type(m.TelegramType),
		AccessHash:        m.AccessHash,
		Title:             m.Title,
		Username:          m.Username,
		Verified:          m.Verified,
		Bot:               m.Bot,
		ParticipantsCount: m.ParticipantsCount,
		LastMessageID:     m.LastMessageID,
		LastActivity:      m.LastActivity,
		UnreadCount:       m.UnreadCount,
		UpdatedAt:         m.UpdatedAt,
	}
}

// NewDialogModel builds the row for a dialog listed by the transport
func NewDialogModel(d domain.Dialog) *DialogModel {
	m := &DialogModel{
		DialogID:          d.ID,
		TelegramType:      string(d.Kind),
		Verified:          d.Verified,
		Bot:               d.Bot,
		ParticipantsCount: d.ParticipantsCount,
		LastMessageID:     d.LastMessageID,
		LastActivity:      d.LastActivity,
		UnreadCount:       d.UnreadCount,
	}
	if d.AccessHash != 0 {
		hash := d.AccessHash
		m.AccessHash = &hash
	}
	if d.Title != "" {
		title := d.Title
		m.Title = &title
	}
	if d.Username != "" {
		username := d.Username
		m.Username = &username
	}
	return m
}
