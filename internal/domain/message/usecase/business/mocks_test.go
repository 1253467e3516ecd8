package business

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/entities"
	"github.com/rs/zerolog"
)

// mockTransport implements domain.Transport with overridable behaviour
type mockTransport struct {
	resolveFunc func(ctx context.Context, ref string) (*domain.Entity, error)
	historyFunc func(entity *domain.Entity) []domain.Message
	forwardFunc func(ctx context.Context, from, to *domain.Entity, ids []int) error
	streamErr   error

	resolved     []string
	peerFromID   []int64
	forwardCalls [][]int
	consumed     int
}

func (m *mockTransport) Connect(ctx context.Context) error    { return nil }
func (m *mockTransport) Disconnect(ctx context.Context) error { return nil }
func (m *mockTransport) IsConnected() bool                    { return true }
func (m *mockTransport) SendCode(ctx context.Context, phone string) (string, error) {
	return "", nil
}
func (m *mockTransport) SignIn(ctx context.Context, phone, code, codeHash, password string) error {
	return nil
}
func (m *mockTransport) ExportSession(ctx context.Context) (string, error) { return "", nil }
func (m *mockTransport) Self(ctx context.Context) (*domain.Account, error) { return nil, nil }
func (m *mockTransport) Dialogs(ctx context.Context) ([]domain.Dialog, error) {
	return nil, nil
}

func (m *mockTransport) ResolveEntity(ctx context.Context, ref string) (*domain.Entity, error) {
	m.resolved = append(m.resolved, ref)
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, ref)
	}
	return nil, domain.ErrPeerNotFound
}

func (m *mockTransport) PeerFromID(id int64) *domain.Entity {
	m.peerFromID = append(m.peerFromID, id)
	kind := domain.PeerUser
	if id < 0 {
		kind = domain.PeerChannel
	}
	return &domain.Entity{Peer: domain.Peer{Kind: kind, ID: bareDialogID(id)}, Synthetic: true}
}

func (m *mockTransport) StreamMessages(ctx context.Context, entity *domain.Entity, opts domain.StreamOptions) domain.MessageIterator {
	var msgs []domain.Message
	if m.historyFunc != nil {
		msgs = m.historyFunc(entity)
	}
	return &sliceIterator{msgs: msgs, err: m.streamErr, owner: m}
}

func (m *mockTransport) ForwardMessages(ctx context.Context, from, to *domain.Entity, ids []int) error {
	m.forwardCalls = append(m.forwardCalls, append([]int(nil), ids...))
	if m.forwardFunc != nil {
		return m.forwardFunc(ctx, from, to, ids)
	}
	return nil
}

// sliceIterator yields msgs and then reports err
type sliceIterator struct {
	msgs  []domain.Message
	err   error
	pos   int
	cur   domain.Message
	owner *mockTransport
	done  error
}

func (it *sliceIterator) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		it.done = err
		return false
	}
	if it.pos >= len(it.msgs) {
		it.done = it.err
		return false
	}
	it.cur = it.msgs[it.pos]
	it.pos++
	it.owner.consumed++
	return true
}

func (it *sliceIterator) Value() domain.Message { return it.cur }
func (it *sliceIterator) Err() error            { return it.done }

// mockClientProvider hands out a fixed transport
type mockClientProvider struct {
	transport domain.Transport
	err       error
	calls     int
}

func (m *mockClientProvider) ActiveClient(ctx context.Context) (domain.Transport, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.transport, nil
}

type messageKey struct {
	dialogID  int64
	messageID int
}

// memoryRepository is an in-memory deps.MessageRepository
type memoryRepository struct {
	mu       sync.Mutex
	messages map[messageKey]entities.MessageRecord
	media    map[messageKey]entities.MediaRecord
	upserts  int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		messages: make(map[messageKey]entities.MessageRecord),
		media:    make(map[messageKey]entities.MediaRecord),
	}
}

func (r *memoryRepository) FindByKey(ctx context.Context, dialogID int64, messageID int) (*entities.MessageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.messages[messageKey{dialogID, messageID}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memoryRepository) Upsert(ctx context.Context, rec *entities.MessageRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	key := messageKey{rec.DialogID, rec.MessageID}
	_, exists := r.messages[key]
	r.messages[key] = *rec
	return !exists, nil
}

func (r *memoryRepository) UpsertMedia(ctx context.Context, rec *entities.MediaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.media[messageKey{rec.DialogID, rec.MessageID}] = *rec
	return nil
}

func (r *memoryRepository) GetMedia(ctx context.Context, dialogID int64, messageID int) (*entities.MediaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.media[messageKey{dialogID, messageID}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memoryRepository) IDsByKeyword(ctx context.Context, dialogID int64, keyword string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int
	for key, rec := range r.messages {
		if key.dialogID == dialogID && rec.Text != nil && strings.Contains(*rec.Text, keyword) {
			ids = append(ids, key.messageID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (r *memoryRepository) HasMediaLongerThan(ctx context.Context, dialogID int64, messageID int, seconds int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.media[messageKey{dialogID, messageID}]
	return ok && rec.DurationSeconds != nil && *rec.DurationSeconds > seconds, nil
}

// mockProducer records published events
type mockProducer struct {
	ingested  []*dto.MessageIngestedEvent
	forwarded []*dto.MessagesForwardedEvent
	err       error
}

func (p *mockProducer) SendMessageIngested(ctx context.Context, event *dto.MessageIngestedEvent) error {
	p.ingested = append(p.ingested, event)
	return p.err
}

func (p *mockProducer) SendMessagesForwarded(ctx context.Context, event *dto.MessagesForwardedEvent) error {
	p.forwarded = append(p.forwarded, event)
	return p.err
}

func newTestUseCase(transport *mockTransport, repo *memoryRepository) (*UseCase, *mockClientProvider, *mockProducer) {
	clients := &mockClientProvider{transport: transport}
	producer := &mockProducer{}
	return NewUseCase(clients, repo, producer, zerolog.Nop(), nil), clients, producer
}

func channelEntity(id int64) *domain.Entity {
	return &domain.Entity{Peer: domain.Peer{Kind: domain.PeerChannel, ID: id}, AccessHash: id * 7}
}

func resolveByID(known ...*domain.Entity) func(ctx context.Context, ref string) (*domain.Entity, error) {
	return func(ctx context.Context, ref string) (*domain.Entity, error) {
		for _, e := range known {
			if ref == e.Username || ref == itoa(e.ID) || ref == itoa(-e.ID) || ref == itoa(channelIDMarker-e.ID) {
				return e, nil
			}
		}
		return nil, domain.ErrPeerNotFound
	}
}

func itoa(i int64) string { return strconv.FormatInt(i, 10) }
