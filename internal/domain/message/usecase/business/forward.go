package business

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	messageerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/errors"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
	"github.com/google/uuid"
)

// Forward forwards stored messages of the source conversation that contain keyword
// into the target conversation. Messages already forwarded from the source into the
// target are detected by scanning the target history and are never sent twice.
func (u *UseCase) Forward(ctx context.Context, req dto.ForwardRequest) (*dto.ForwardResult, error) {
	start := time.Now()

	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return nil, messageerrors.ErrEmptyKeyword
	}
	if req.SourceChannelID == 0 || req.TargetChannelID == 0 {
		return nil, messageerrors.ErrMissingChatIDs
	}
	if req.MinDurationSeconds != nil && *req.MinDurationSeconds < 0 {
		return nil, messageerrors.ErrInvalidDuration
	}

	source := bareDialogID(req.SourceChannelID)
	log := u.logger.With().
		Str("keyword", keyword).
		Int64("source", source).
		Int64("target", bareDialogID(req.TargetChannelID)).
		Logger()

	candidates, err := u.selectCandidates(ctx, source, keyword, req.MinDurationSeconds)
	if err != nil {
		u.metrics.RecordForwardError("storage")
		return nil, err
	}
	if len(candidates) == 0 {
		log.Info().Msg("Nothing to forward")
		u.metrics.RecordForward(string(dto.ForwardNothing), 0, time.Since(start).Seconds())
		return &dto.ForwardResult{Status: dto.ForwardNothing}, nil
	}

	client, err := u.clients.ActiveClient(ctx)
	if err != nil {
		u.metrics.RecordForwardError("no_client")
		return nil, err
	}

	from, err := resolveEntity(ctx, client, strconv.FormatInt(req.SourceChannelID, 10))
	if err != nil {
		u.metrics.RecordForwardError("resolve_failed")
		return nil, err
	}
	to, err := resolveEntity(ctx, client, strconv.FormatInt(req.TargetChannelID, 10))
	if err != nil {
		u.metrics.RecordForwardError("resolve_failed")
		return nil, err
	}

	remaining, present, err := u.dedup(ctx, client, to, source, candidates)
	if err != nil {
		u.metrics.RecordForwardError("dedup_failed")
		return nil, err
	}

	result := &dto.ForwardResult{Candidates: candidates, AlreadySeen: present}
	if len(remaining) == 0 {
		log.Info().Ints("already_present", present).Msg("All candidates already present in target")
		result.Status = dto.ForwardAlreadyPresent
		u.metrics.RecordForward(string(result.Status), 0, time.Since(start).Seconds())
		return result, nil
	}

	if err := client.ForwardMessages(ctx, from, to, remaining); err != nil {
		log.Error().Err(err).Ints("ids", remaining).Msg("Batch forward failed")
		u.metrics.RecordForwardError("forward_failed")
		return nil, pkgerrors.NewPartialFailureErrorf(remaining,
			"forward of %d messages was not confirmed, some may have been delivered: %w", len(remaining), err)
	}

	result.Status = dto.ForwardDone
	result.Forwarded = remaining
	u.metrics.RecordForward(string(result.Status), len(remaining), time.Since(start).Seconds())
	log.Info().
		Ints("forwarded", remaining).
		Ints("already_present", present).
		Dur("duration", time.Since(start)).
		Msg("Messages forwarded")

	u.publishForwarded(ctx, keyword, source, bareDialogID(req.TargetChannelID), remaining)

	return result, nil
}

// selectCandidates returns stored ids matching keyword, filtered by media duration when requested
func (u *UseCase) selectCandidates(ctx context.Context, source int64, keyword string, minDuration *int) ([]int, error) {
	ids, err := u.repo.IDsByKeyword(ctx, source, keyword)
	if err != nil {
		return nil, pkgerrors.NewInternalErrorf("failed to select stored messages: %w", err)
	}
	if minDuration == nil || len(ids) == 0 {
		return ids, nil
	}

	filtered := make([]int, 0, len(ids))
	for _, id := range ids {
		ok, err := u.repo.HasMediaLongerThan(ctx, source, id, *minDuration)
		if err != nil {
			return nil, pkgerrors.NewInternalErrorf("failed to check media of message %d: %w", id, err)
		}
		if ok {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// dedup scans the target history and drops candidates already forwarded from source.
// The scan stops as soon as no candidate is left.
func (u *UseCase) dedup(
	ctx context.Context,
	client domain.Transport,
	target *domain.Entity,
	source int64,
	candidates []int,
) ([]int, []int, error) {
	pending := make(map[int]struct{}, len(candidates))
	for _, id := range candidates {
		pending[id] = struct{}{}
	}

	var present []int
	it := client.StreamMessages(ctx, target, domain.StreamOptions{})
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if !it.Next(ctx) {
			break
		}

		fwd := it.Value().Forward
		if fwd == nil || fwd.From == nil || fwd.From.ID != source {
			continue
		}
		if _, ok := pending[fwd.ChannelPost]; ok {
			delete(pending, fwd.ChannelPost)
			present = append(present, fwd.ChannelPost)
		}
	}
	if err := it.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		return nil, nil, pkgerrors.NewConnectionErrorf("failed to scan target history: %w", err)
	}

	remaining := make([]int, 0, len(pending))
	for id := range pending {
		remaining = append(remaining, id)
	}
	sort.Ints(remaining)
	sort.Ints(present)

	return remaining, present, nil
}

func (u *UseCase) publishForwarded(ctx context.Context, keyword string, source, target int64, ids []int) {
	if u.producer == nil {
		return
	}

	event := &dto.MessagesForwardedEvent{
		BatchID:        uuid.NewString(),
		Keyword:        keyword,
		SourceDialogID: source,
		TargetDialogID: target,
		MessageIDs:     ids,
		ForwardedAt:    time.Now().Unix(),
	}
	if err := u.producer.SendMessagesForwarded(ctx, event); err != nil {
		u.logger.Warn().Err(err).Str("batch_id", event.BatchID).Msg("Failed to publish messages forwarded event")
	}
}
