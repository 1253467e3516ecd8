package entities

import "time"

// MessageModel is a GORM model for messages table
type MessageModel struct {
	ID               uint  `gorm:"primaryKey"`
	DialogID         int64 `gorm:"not null;uniqueIndex:uk_message,priority:1;index:idx_messages_dialog_date,priority:1"`
	MessageID        int   `gorm:"not null;uniqueIndex:uk_message,priority:2"`
	SenderID         *int64
	SenderType       string    `gorm:"not null;size:16"`
	Date             time.Time `gorm:"not null;index:idx_messages_dialog_date,priority:2,sort:desc"`
	Text             *string
	Views            *int
	MediaType        *string `gorm:"size:16"`
	MediaSize        *int64
	ReplyToMessageID *int
	ForwardFromID    *int64
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (MessageModel) TableName() string {
	return "messages"
}

// ToEntity converts DB model to domain entity
func (m *MessageModel) ToEntity() *MessageRecord {
	rec := &MessageRecord{
		DialogID:         m.DialogID,
		MessageID:        m.MessageID,
		SenderID:         m.SenderID,
		SenderType:       SenderType(m.SenderType),
		Date:             m.Date,
		Text:             m.Text,
		Views:            m.Views,
		MediaSize:        m.MediaSize,
		ReplyToMessageID: m.ReplyToMessageID,
		ForwardFromID:    m.ForwardFromID,
	}
	if m.MediaType != nil {
		mt := MediaType(*m.MediaType)
		rec.MediaType = &mt
	}
	return rec
}

// NewMessageModel converts a domain record to its DB model
func NewMessageModel(r *MessageRecord) *MessageModel {
	m := &MessageModel{
		DialogID:         r.DialogID,
		MessageID:        r.MessageID,
		SenderID:         r.SenderID,
		SenderType:       string(r.SenderType),
		Date:             r.Date,
		Text:             r.Text,
		Views:            r.Views,
		MediaSize:        r.MediaSize,
		ReplyToMessageID: r.ReplyToMessageID,
		ForwardFromID:    r.ForwardFromID,
	}
	if r.MediaType != nil {
		mt := string(*r.MediaType)
		m.MediaType = &mt
	}
	return m
}

// MediaModel is a GORM model for medias table
type MediaModel struct {
	ID              uint   `gorm:"primaryKey"`
	DialogID        int64  `gorm:"not null;uniqueIndex:uk_media_message,priority:1"`
	MessageID       int    `gorm:"not null;uniqueIndex:uk_media_message,priority:2"`
	MediaType       string `gorm:"not null;size:16"`
	MimeType        *string
	FileName        *string
	FileReference   []byte
	ThumbWidth      *int
	ThumbHeight     *int
	DurationSeconds *int
	SizeBytes       *int64
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (MediaModel) TableName() string {
	return "medias"
}

// ToEntity converts DB model to domain entity
func (m *MediaModel) ToEntity() *MediaRecord {
	return &MediaRecord{
		DialogID:        m.DialogID,
		MessageID:       m.MessageID,
		MediaType:       MediaType(m.MediaType),
		MimeType:        m.MimeType,
		FileName:        m.FileName,
		FileReference:   m.FileReference,
		ThumbWidth:      m.ThumbWidth,
		ThumbHeight:     m.ThumbHeight,
		DurationSeconds: m.DurationSeconds,
		SizeBytes:       m.SizeBytes,
	}
}

// NewMediaModel converts a domain record to its DB model
func NewMediaModel(r *MediaRecord) *MediaModel {
	return &MediaModel{
		DialogID:        r.DialogID,
		MessageID:       r.MessageID,
		MediaType:       string(r.MediaType),
		MimeType:        r.MimeType,
		FileName:        r.FileName,
		FileReference:   r.FileReference,
		ThumbWidth:      r.ThumbWidth,
		ThumbHeight:     r.ThumbHeight,
		DurationSeconds: r.DurationSeconds,
		SizeBytes:       r.SizeBytes,
	}
}
