package business

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/dto"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/entities"
	pkgerrors "github.com/Conte777/NewsFlow/services/crawler-service/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textMessage(dialog int64, id int, text string) domain.Message {
	return domain.Message{
		ID:     id,
		Dialog: domain.Peer{Kind: domain.PeerChannel, ID: dialog},
		Date:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Text:   text,
	}
}

func TestFetchByKeywords_ReingestOverwritesInPlace(t *testing.T) {
	channel := channelEntity(55)
	history := []domain.Message{textMessage(55, 101, "hello world")}
	transport := &mockTransport{
		resolveFunc: resolveByID(channel),
		historyFunc: func(*domain.Entity) []domain.Message { return history },
	}
	repo := newMemoryRepository()
	uc, _, producer := newTestUseCase(transport, repo)

	res, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "55", Keywords: []string{"hello"}})
	require.NoError(t, err)
	assert.Equal(t, dto.IngestResult{Scanned: 1, Matched: 1, Created: 1}, *res)

	history = []domain.Message{textMessage(55, 101, "hello again")}
	res, err = uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "55", Keywords: []string{"hello"}})
	require.NoError(t, err)
	assert.Equal(t, dto.IngestResult{Scanned: 1, Matched: 1, Updated: 1}, *res)

	require.Len(t, repo.messages, 1)
	stored, err := repo.FindByKey(context.Background(), 55, 101)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "hello again", *stored.Text)

	require.Len(t, producer.ingested, 2)
	assert.True(t, producer.ingested[0].Created)
	assert.False(t, producer.ingested[1].Created)
}

func TestFetchByKeywords_RepeatedIngestionKeepsKeyUnique(t *testing.T) {
	channel := channelEntity(9)
	transport := &mockTransport{
		resolveFunc: resolveByID(channel),
		historyFunc: func(*domain.Entity) []domain.Message {
			return []domain.Message{textMessage(9, 1, "go news"), textMessage(9, 2, "go tips")}
		},
	}
	repo := newMemoryRepository()
	uc, _, _ := newTestUseCase(transport, repo)

	for i := 0; i < 3; i++ {
		_, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "9", Keywords: []string{"go"}})
		require.NoError(t, err)
	}

	assert.Len(t, repo.messages, 2)
	assert.Equal(t, 6, repo.upserts)
}

func TestFetchByKeywords_KeywordValidation(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
	}{
		{"nil", nil},
		{"blank terms", []string{"", "  ", "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, clients, _ := newTestUseCase(&mockTransport{}, newMemoryRepository())

			_, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "1", Keywords: tt.keywords})

			var validationErr *pkgerrors.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Zero(t, clients.calls, "no transport must be requested")
		})
	}
}

func TestFetchByKeywords_MatchingIsCaseInsensitiveAndSkipsEmptyText(t *testing.T) {
	channel := channelEntity(3)
	transport := &mockTransport{
		resolveFunc: resolveByID(channel),
		historyFunc: func(*domain.Entity) []domain.Message {
			return []domain.Message{
				textMessage(3, 4, "Breaking NEWS today"),
				textMessage(3, 3, ""),
				textMessage(3, 2, "weather only"),
				textMessage(3, 1, "release (v1.2) notes"),
			}
		},
	}
	repo := newMemoryRepository()
	uc, _, _ := newTestUseCase(transport, repo)

	res, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{
		ChannelRef: "3",
		Keywords:   []string{" news ", "(v1.2)"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, 2, res.Matched)
	assert.Contains(t, repo.messages, messageKey{3, 4})
	assert.Contains(t, repo.messages, messageKey{3, 1})
}

func TestFetchByKeywords_StoresMedia(t *testing.T) {
	channel := channelEntity(8)
	msg := textMessage(8, 20, "demo video")
	msg.Media = domain.DocumentMedia{
		ID:       1,
		MimeType: "video/mp4",
		Size:     2048,
		Attributes: []domain.DocumentAttribute{
			domain.VideoAttribute{Duration: 41.6, Width: 1280, Height: 720},
			domain.FilenameAttribute{FileName: "clip.mp4"},
		},
	}
	transport := &mockTransport{
		resolveFunc: resolveByID(channel),
		historyFunc: func(*domain.Entity) []domain.Message { return []domain.Message{msg} },
	}
	repo := newMemoryRepository()
	uc, _, producer := newTestUseCase(transport, repo)

	res, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "8", Keywords: []string{"demo"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Media)

	media, err := repo.GetMedia(context.Background(), 8, 20)
	require.NoError(t, err)
	require.NotNil(t, media)
	assert.Equal(t, entities.MediaVideo, media.MediaType)
	assert.Equal(t, 42, *media.DurationSeconds)
	assert.Equal(t, "clip.mp4", *media.FileName)

	stored := repo.messages[messageKey{8, 20}]
	require.NotNil(t, stored.MediaType)
	assert.Equal(t, entities.MediaVideo, *stored.MediaType)
	assert.Equal(t, int64(2048), *stored.MediaSize)

	require.Len(t, producer.ingested, 1)
	assert.Equal(t, 42, *producer.ingested[0].DurationSeconds)
}

func TestFetchByKeywords_ResolutionFallbacks(t *testing.T) {
	named := &domain.Entity{Peer: domain.Peer{Kind: domain.PeerChannel, ID: 77}, Username: "gonews"}

	t.Run("strips leading at", func(t *testing.T) {
		transport := &mockTransport{
			resolveFunc: resolveByID(named),
		}
		uc, _, _ := newTestUseCase(transport, newMemoryRepository())

		_, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "@gonews", Keywords: []string{"x"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"@gonews", "gonews"}, transport.resolved)
		assert.Empty(t, transport.peerFromID)
	})

	t.Run("numeric id falls back to synthetic peer", func(t *testing.T) {
		var streamed *domain.Entity
		transport := &mockTransport{
			historyFunc: func(e *domain.Entity) []domain.Message {
				streamed = e
				return nil
			},
		}
		uc, _, _ := newTestUseCase(transport, newMemoryRepository())

		_, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "-1001234567890", Keywords: []string{"x"}})
		require.NoError(t, err)
		assert.Equal(t, []int64{-1001234567890}, transport.peerFromID)
		require.NotNil(t, streamed)
		assert.True(t, streamed.Synthetic)
		assert.Equal(t, domain.PeerChannel, streamed.Kind)
		assert.Equal(t, int64(1234567890), streamed.ID)
	})

	t.Run("unresolvable name is a validation error", func(t *testing.T) {
		transport := &mockTransport{}
		uc, _, _ := newTestUseCase(transport, newMemoryRepository())

		_, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "@nobody", Keywords: []string{"x"}})

		var validationErr *pkgerrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, err.Error(), "@nobody")
	})

	t.Run("transport failure is a connection error", func(t *testing.T) {
		floodWait := errors.New("rpc error code 420: FLOOD_WAIT (30)")
		transport := &mockTransport{
			resolveFunc: func(context.Context, string) (*domain.Entity, error) {
				return nil, floodWait
			},
		}
		uc, _, _ := newTestUseCase(transport, newMemoryRepository())

		_, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "@gonews", Keywords: []string{"x"}})

		var connErr *pkgerrors.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.ErrorIs(t, err, floodWait)
		var validationErr *pkgerrors.ValidationError
		assert.False(t, errors.As(err, &validationErr))
	})
}

func TestFetchByKeywords_CancellationKeepsPrefix(t *testing.T) {
	channel := channelEntity(5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newMemoryRepository()
	transport := &mockTransport{
		resolveFunc: resolveByID(channel),
		historyFunc: func(*domain.Entity) []domain.Message {
			return []domain.Message{textMessage(5, 3, "k1"), textMessage(5, 2, "k2"), textMessage(5, 1, "k3")}
		},
	}
	uc, _, _ := newTestUseCase(transport, repo)
	uc.producer = cancelAfterFirst{cancel: cancel}

	res, err := uc.FetchByKeywords(ctx, dto.FetchRequest{ChannelRef: "5", Keywords: []string{"k"}})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Created)
	assert.Len(t, repo.messages, 1)
	assert.Contains(t, repo.messages, messageKey{5, 3})
}

func TestFetchByKeywords_StreamFailureIsConnectionError(t *testing.T) {
	channel := channelEntity(5)
	transport := &mockTransport{
		resolveFunc: resolveByID(channel),
		historyFunc: func(*domain.Entity) []domain.Message {
			return []domain.Message{textMessage(5, 3, "k1")}
		},
		streamErr: errors.New("rpc error code 500"),
	}
	repo := newMemoryRepository()
	uc, _, _ := newTestUseCase(transport, repo)

	res, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "5", Keywords: []string{"k"}})

	var connErr *pkgerrors.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 1, res.Created)
}

func TestFetchByKeywords_NoActiveClient(t *testing.T) {
	uc, clients, _ := newTestUseCase(&mockTransport{}, newMemoryRepository())
	clients.err = pkgerrors.NewConnectionError("telegram client is not initialized")

	_, err := uc.FetchByKeywords(context.Background(), dto.FetchRequest{ChannelRef: "1", Keywords: []string{"x"}})

	var connErr *pkgerrors.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

// cancelAfterFirst cancels the run once the first message has been stored
type cancelAfterFirst struct {
	cancel context.CancelFunc
}

func (c cancelAfterFirst) SendMessageIngested(ctx context.Context, event *dto.MessageIngestedEvent) error {
	c.cancel()
	return nil
}

func (c cancelAfterFirst) SendMessagesForwarded(ctx context.Context, event *dto.MessagesForwardedEvent) error {
	return nil
}
