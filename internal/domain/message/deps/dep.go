package deps

import (
	"context"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/entities"
)

// MessageRepository defines storage for message and media records
type MessageRepository interface {
	// FindByKey returns the stored message or nil when absent
	FindByKey(ctx context.Context, dialogID int64, messageID int) (*entities.MessageRecord, error)
	// Upsert writes rec by its natural key and reports whether a new row was created
	Upsert(ctx context.Context, rec *entities.MessageRecord) (bool, error)
	// UpsertMedia writes media by (dialogID, messageID)
	UpsertMedia(ctx context.Context, rec *entities.MediaRecord) error
	// IDsByKeyword returns message ids under dialogID whose text contains keyword (case-sensitive), ascending
	IDsByKeyword(ctx context.Context, dialogID int64, keyword string) ([]int, error)
	// HasMediaLongerThan reports whether the message has media with duration strictly above seconds
	HasMediaLongerThan(ctx context.Context, dialogID int64, messageID int, seconds int) (bool, error)
	// GetMedia returns the stored media or nil when absent
	GetMedia(ctx context.Context, dialogID int64, messageID int) (*entities.MediaRecord, error)
}

// EventProducer publishes message events
type EventProducer interface {
	SendMessageIngested(ctx context.Context, event *dto.MessageIngestedEvent) error
	SendMessagesForwarded(ctx context.Context, event *dto.MessagesForwardedEvent) error
}

// MessageService is the use case consumed by the HTTP delivery
type MessageService interface {
	FetchByKeywords(ctx context.Context, req dto.FetchRequest) (*dto.IngestResult, error)
	Forward(ctx context.Context, req dto.ForwardRequest) (*dto.ForwardResult, error)
	GetMessage(ctx context.Context, dialogID int64, messageID int) (*dto.StoredMessage, error)
}
