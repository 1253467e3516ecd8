package business

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/entities"
	dialogerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/errors"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
)

// dialogTransport lists a fixed set of dialogs; other methods are unused
type dialogTransport struct {
	domain.Transport
	dialogs []domain.Dialog
	err     error
}

func (t *dialogTransport) Dialogs(ctx context.Context) ([]domain.Dialog, error) {
	return t.dialogs, t.err
}

type fixedProvider struct {
	transport domain.Transport
	err       error
}

func (p *fixedProvider) ActiveClient(ctx context.Context) (domain.Transport, error) {
	return p.transport, p.err
}

type dialogKey struct {
	id   int64
	kind entities.Type
}

type memoryRepository struct {
	rows      map[dialogKey]*entities.DialogRecord
	upsertErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[dialogKey]*entities.DialogRecord)}
}

func (r *memoryRepository) UpsertAll(ctx context.Context, dialogs []domain.Dialog) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	for _, d := range dialogs {
		model := entities.NewDialogModel(d)
		r.rows[dialogKey{d.ID, entities.Type(d.Kind)}] = model.ToEntity()
	}
	return nil
}

func (r *memoryRepository) Get(ctx context.Context, id int64, kind entities.Type) (*entities.DialogRecord, error) {
	return r.rows[dialogKey{id, kind}], nil
}

func (r *memoryRepository) List(ctx context.Context) ([]*entities.DialogRecord, error) {
	out := make([]*entities.DialogRecord, 0, len(r.rows))
	for _, rec := range r.rows {
		out = append(out, rec)
	}
	return out, nil
}

func newDialog(kind domain.PeerKind, id int64, title string) domain.Dialog {
	now := time.Now().UTC()
	return domain.Dialog{
		Entity:       domain.Entity{Peer: domain.Peer{Kind: kind, ID: id}, Title: title},
		LastActivity: &now,
	}
}

func TestSyncDialogs_StoresAndReturnsAll(t *testing.T) {
	repo := newMemoryRepository()
	repo.rows[dialogKey{9, entities.TypeUser}] = &entities.DialogRecord{DialogID: 9, Type: entities.TypeUser}
	transport := &dialogTransport{dialogs: []domain.Dialog{
		newDialog(domain.PeerChannel, 100, "News"),
		newDialog(domain.PeerChat, 200, "Team"),
	}}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	uc := NewUseCase(&fixedProvider{transport: transport}, repo, zerolog.Nop(), m)

	stored, err := uc.SyncDialogs(context.Background())

	require.NoError(t, err)
	assert.Len(t, stored, 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.DialogsSynced))
}

func TestSyncDialogs_NoClient(t *testing.T) {
	notConnected := pkgerrors.NewConnectionError("telegram client is not initialized")
	uc := NewUseCase(&fixedProvider{err: notConnected}, newMemoryRepository(), zerolog.Nop(), nil)

	_, err := uc.SyncDialogs(context.Background())

	assert.ErrorIs(t, err, notConnected)
}

func TestSyncDialogs_TransportFailureIsConnectionError(t *testing.T) {
	transport := &dialogTransport{err: errors.New("rpc failed")}
	uc := NewUseCase(&fixedProvider{transport: transport}, newMemoryRepository(), zerolog.Nop(), nil)

	_, err := uc.SyncDialogs(context.Background())

	var connErr *pkgerrors.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestSyncDialogs_StorageFailureIsInternal(t *testing.T) {
	repo := newMemoryRepository()
	repo.upsertErr = errors.New("disk full")
	transport := &dialogTransport{dialogs: []domain.Dialog{newDialog(domain.PeerUser, 1, "a")}}
	uc := NewUseCase(&fixedProvider{transport: transport}, repo, zerolog.Nop(), nil)

	_, err := uc.SyncDialogs(context.Background())

	var internalErr *pkgerrors.InternalError
	assert.ErrorAs(t, err, &internalErr)
}

func TestGetDialog(t *testing.T) {
	repo := newMemoryRepository()
	repo.rows[dialogKey{100, entities.TypeChannel}] = &entities.DialogRecord{DialogID: 100, Type: entities.TypeChannel}
	uc := NewUseCase(&fixedProvider{}, repo, zerolog.Nop(), nil)
	ctx := context.Background()

	got, err := uc.GetDialog(ctx, 100, entities.TypeChannel)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.DialogID)

	_, err = uc.GetDialog(ctx, 100, entities.TypeUser)
	assert.ErrorIs(t, err, dialogerrors.ErrDialogNotFound)

	_, err = uc.GetDialog(ctx, 100, entities.Type("group"))
	assert.ErrorIs(t, err, dialogerrors.ErrInvalidType)

	_, err = uc.GetDialog(ctx, -100, entities.TypeChannel)
	assert.ErrorIs(t, err, dialogerrors.ErrInvalidDialogID)
}
