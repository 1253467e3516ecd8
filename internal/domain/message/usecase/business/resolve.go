package business

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

// channelIDMarker is the offset Bot-API style ids add to channel ids (-100xxxxxxxxxx)
const channelIDMarker = -1000000000000

// resolveEntity resolves ref as given, then without a leading '@', then as a bare
// numeric id. The numeric fallback carries no access hash and may be rejected by the
// server for history or forward requests. Only an unknown name is a validation
// error; any other transport failure is a connection error.
func resolveEntity(ctx context.Context, client domain.Transport, ref string) (*domain.Entity, error) {
	ref = strings.TrimSpace(ref)

	entity, err := client.ResolveEntity(ctx, ref)
	if err == nil {
		return entity, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	lastErr := err

	if stripped := strings.TrimPrefix(ref, "@"); stripped != ref && stripped != "" {
		entity, err = client.ResolveEntity(ctx, stripped)
		if err == nil {
			return entity, nil
		}
		lastErr = err
	}

	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil && id != 0 {
		return client.PeerFromID(id), nil
	}

	if !errors.Is(lastErr, domain.ErrPeerNotFound) {
		return nil, pkgerrors.NewConnectionErrorf("failed to resolve target %q: %w", ref, lastErr)
	}
	return nil, pkgerrors.NewValidationErrorf("cannot resolve target %q", ref)
}

// bareDialogID converts Bot-API style ids (negative, optionally -100 marked) to the
// positive id stored with messages.
func bareDialogID(id int64) int64 {
	switch {
	case id >= 0:
		return id
	case id <= channelIDMarker:
		return channelIDMarker - id
	default:
		return -id
	}
}
