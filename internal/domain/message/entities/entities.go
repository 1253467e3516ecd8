package entities

import "time"

// SenderType is the resolved author kind of a message
type SenderType string

const (
	SenderUser      SenderType = "user"
	SenderBot       SenderType = "bot"
	SenderChannel   SenderType = "channel"
	SenderAnonymous SenderType = "anonymous"
)

// MediaType is the classified kind of a message attachment
type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
	MediaAudio    MediaType = "audio"
	MediaVoice    MediaType = "voice"
	MediaSticker  MediaType = "sticker"
	MediaGIF      MediaType = "gif"
	MediaPoll     MediaType = "poll"
	MediaWebPage  MediaType = "webpage"
)

// MessageRecord is a stored message, unique by (DialogID, MessageID)
type MessageRecord struct {
	DialogID         int64      `json:"dialog_id"`
	MessageID        int        `json:"message_id"`
	SenderID         *int64     `json:"sender_id,omitempty"`
	SenderType       SenderType `json:"sender_type"`
	Date             time.Time  `json:"date"`
	Text             *string    `json:"text,omitempty"`
	Views            *int       `json:"views,omitempty"`
	MediaType        *MediaType `json:"media_type,omitempty"`
	MediaSize        *int64     `json:"media_size,omitempty"`
	ReplyToMessageID *int       `json:"reply_to_message_id,omitempty"`
	ForwardFromID    *int64     `json:"forward_from_id,omitempty"`
}

// MediaRecord is the stored attachment metadata of one message
type MediaRecord struct {
	DialogID        int64     `json:"dialog_id"`
	MessageID       int       `json:"message_id"`
	MediaType       MediaType `json:"media_type"`
	MimeType        *string   `json:"mime_type,omitempty"`
	FileName        *string   `json:"file_name,omitempty"`
	FileReference   []byte    `json:"file_reference,omitempty"`
	ThumbWidth      *int      `json:"thumb_width,omitempty"`
	ThumbHeight     *int      `json:"thumb_height,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	SizeBytes       *int64    `json:"size_bytes,omitempty"`
}
