package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/entities"
)

// FetchRequest selects which messages of a conversation are ingested
type FetchRequest struct {
	ChannelRef   string
	Keywords     []string
	Limit        int
	MinMessageID int
}

// IngestResult summarizes one ingestion run
type IngestResult struct {
	Scanned int `json:"scanned"`
	Matched int `json:"matched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Media   int `json:"media"`
}

// ForwardRequest selects stored messages to forward between conversations
type ForwardRequest struct {
	Keyword            string
	SourceChannelID    int64
	TargetChannelID    int64
	MinDurationSeconds *int
}

// ForwardStatus is the outcome of a forward call that did not fail
type ForwardStatus string

const (
	// ForwardNothing means no stored message matched the selection
	ForwardNothing ForwardStatus = "nothing_to_forward"
	// ForwardAlreadyPresent means every candidate was already in the target
	ForwardAlreadyPresent ForwardStatus = "already_present"
	// ForwardDone means the remaining candidates were forwarded
	ForwardDone ForwardStatus = "forwarded"
)

// ForwardResult reports what a forward call did
type ForwardResult struct {
	Status      ForwardStatus `json:"status"`
	Candidates  []int         `json:"candidates,omitempty"`
	Forwarded   []int         `json:"forwarded,omitempty"`
	AlreadySeen []int         `json:"already_present,omitempty"`
}

// StoredMessage is a stored message with its media
type StoredMessage struct {
	*entities.MessageRecord
	Media *entities.MediaRecord `json:"media,omitempty"`
}

// ChannelRef accepts a channel reference as a JSON string or number
type ChannelRef string

// UnmarshalJSON implements json.Unmarshaler
func (r *ChannelRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ChannelRef(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = ChannelRef(n.String())
	return nil
}

// GetMessageRequest is the body of POST /messages/get_message
type GetMessageRequest struct {
	ChannelID ChannelRef `json:"channel_id"`
	// Keywords is a comma separated list
	Keywords string `json:"keywords"`
	Limit    int    `json:"limit,omitempty"`
	MinID    int    `json:"min_id,omitempty"`
}

// ToFetchRequest splits the keyword list
func (r GetMessageRequest) ToFetchRequest() FetchRequest {
	return FetchRequest{
		ChannelRef:   string(r.ChannelID),
		Keywords:     strings.Split(r.Keywords, ","),
		Limit:        r.Limit,
		MinMessageID: r.MinID,
	}
}

// ForwardMessageRequest is the body of POST /messages/forward_message
type ForwardMessageRequest struct {
	Keyword     string `json:"keyword"`
	FromChatID  int64  `json:"from_chat_id"`
	ToChatID    int64  `json:"to_chat_id"`
	MinDuration *int   `json:"min_duration,omitempty"`
}

// ToForwardRequest converts the HTTP body
func (r ForwardMessageRequest) ToForwardRequest() ForwardRequest {
	return ForwardRequest{
		Keyword:            r.Keyword,
		SourceChannelID:    r.FromChatID,
		TargetChannelID:    r.ToChatID,
		MinDurationSeconds: r.MinDuration,
	}
}

// Events

// MessageIngestedEvent is published for every stored message
type MessageIngestedEvent struct {
	DialogID        int64     `json:"dialog_id"`
	MessageID       int       `json:"message_id"`
	SenderID        *int64    `json:"sender_id,omitempty"`
	SenderType      string    `json:"sender_type"`
	Date            time.Time `json:"date"`
	Text            string    `json:"text"`
	MediaType       *string   `json:"media_type,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	Created         bool      `json:"created"`
	IngestedAt      int64     `json:"ingested_at"`
}

// MessagesForwardedEvent is published after a successful batch forward
type MessagesForwardedEvent struct {
	BatchID        string `json:"batch_id"`
	Keyword        string `json:"keyword"`
	SourceDialogID int64  `json:"source_dialog_id"`
	TargetDialogID int64  `json:"target_dialog_id"`
	MessageIDs     []int  `json:"message_ids"`
	ForwardedAt    int64  `json:"forwarded_at"`
}
