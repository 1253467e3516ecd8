package entities

import "time"

// Type is the kind of a synced dialog
type Type string

const (
	TypeUser    Type = "user"
	TypeChat    Type = "chat"
	TypeChannel Type = "channel"
)

// Valid reports whether t is a known dialog type
func (t Type) Valid() bool {
	switch t {
	case TypeUser, TypeChat, TypeChannel:
		return true
	}
	return false
}

// DialogRecord is a conversation of the account's dialog list, unique by (DialogID, Type)
type DialogRecord struct {
	DialogID          int64      `json:"dialog_id"`
	Type              Type       `json:"telegram_type"`
	AccessHash        *int64     `json:"access_hash,omitempty"`
	Title             *string    `json:"title,omitempty"`
	Username          *string    `json:"username,omitempty"`
	Verified          bool       `json:"verified"`
	Bot               bool       `json:"bot"`
	ParticipantsCount *int       `json:"participants_count,omitempty"`
	LastMessageID     *int       `json:"last_message_id,omitempty"`
	LastActivity      *time.Time `json:"last_activity,omitempty"`
	UnreadCount       int        `json:"unread_count"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
