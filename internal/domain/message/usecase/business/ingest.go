package business

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/entities"
	messageerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/errors"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

// FetchByKeywords streams the history of a conversation and stores every message
// whose text contains one of the keywords. Writes are applied one message at a time,
// so a cancelled run leaves the already processed prefix stored.
func (u *UseCase) FetchByKeywords(ctx context.Context, req dto.FetchRequest) (*dto.IngestResult, error) {
	start := time.Now()

	if strings.TrimSpace(req.ChannelRef) == "" {
		return nil, messageerrors.ErrEmptyChannelRef
	}
	if req.Limit < 0 {
		return nil, messageerrors.ErrInvalidLimit
	}
	if req.MinMessageID < 0 {
		return nil, messageerrors.ErrInvalidMinID
	}

	matcher, err := newKeywordMatcher(req.Keywords)
	if err != nil {
		return nil, err
	}

	client, err := u.clients.ActiveClient(ctx)
	if err != nil {
		u.metrics.RecordIngestError("no_client")
		return nil, err
	}

	entity, err := resolveEntity(ctx, client, req.ChannelRef)
	if err != nil {
		u.metrics.RecordIngestError("resolve_failed")
		return nil, err
	}

	log := u.logger.With().
		Str("channel_ref", req.ChannelRef).
		Int64("dialog_id", entity.ID).
		Strs("keywords", matcher.terms).
		Logger()
	log.Info().
		Int("limit", req.Limit).
		Int("min_id", req.MinMessageID).
		Bool("synthetic_peer", entity.Synthetic).
		Msg("Starting keyword ingestion")

	result := &dto.IngestResult{}
	it := client.StreamMessages(ctx, entity, domain.StreamOptions{
		Limit: req.Limit,
		MinID: req.MinMessageID,
	})

	for {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Interface("result", result).Msg("Ingestion cancelled")
			u.metrics.RecordIngestError("cancelled")
			return result, err
		}
		if !it.Next(ctx) {
			break
		}

		msg := it.Value()
		result.Scanned++

		if msg.Text == "" || !matcher.Match(msg.Text) {
			continue
		}
		result.Matched++

		dialogID := msg.Dialog.ID
		if dialogID == 0 {
			dialogID = entity.ID
		}
		rec, media := normalize(msg, dialogID)

		created, err := u.repo.Upsert(ctx, rec)
		if err != nil {
			u.metrics.RecordIngestError("storage")
			return result, pkgerrors.NewInternalErrorf("failed to store message %d: %w", msg.ID, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}

		if media != nil {
			if err := u.repo.UpsertMedia(ctx, media); err != nil {
				u.metrics.RecordIngestError("storage")
				return result, pkgerrors.NewInternalErrorf("failed to store media of message %d: %w", msg.ID, err)
			}
			result.Media++
		}

		u.publishIngested(ctx, rec, media, created)
	}

	if err := it.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			u.metrics.RecordIngestError("cancelled")
			return result, err
		}
		u.metrics.RecordIngestError("stream_failed")
		return result, pkgerrors.NewConnectionErrorf("failed to stream messages of %q: %w", req.ChannelRef, err)
	}

	u.metrics.RecordIngest(result.Scanned, result.Matched, time.Since(start).Seconds())
	log.Info().
		Int("scanned", result.Scanned).
		Int("matched", result.Matched).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("media", result.Media).
		Dur("duration", time.Since(start)).
		Msg("Keyword ingestion completed")

	return result, nil
}

func (u *UseCase) publishIngested(ctx context.Context, rec *entities.MessageRecord, media *entities.MediaRecord, created bool) {
	if u.producer == nil {
		return
	}

	event := &dto.MessageIngestedEvent{
		DialogID:   rec.DialogID,
		MessageID:  rec.MessageID,
		SenderID:   rec.SenderID,
		SenderType: string(rec.SenderType),
		Date:       rec.Date,
		Created:    created,
		IngestedAt: time.Now().Unix(),
	}
	if rec.Text != nil {
		event.Text = *rec.Text
	}
	if media != nil {
		mt := string(media.MediaType)
		event.MediaType = &mt
		event.DurationSeconds = media.DurationSeconds
	}

	if err := u.producer.SendMessageIngested(ctx, event); err != nil {
		u.logger.Warn().Err(err).
			Int64("dialog_id", rec.DialogID).
			Int("message_id", rec.MessageID).
			Msg("Failed to publish message ingested event")
	}
}
