package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/dialog/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entities.DialogModel{}))

	return &Repository{db: db}, db
}

func dialog(kind domain.PeerKind, id int64, title string, activity time.Time) domain.Dialog {
	return domain.Dialog{
		Entity: domain.Entity{
			Peer:       domain.Peer{Kind: kind, ID: id},
			AccessHash: id * 7,
			Title:      title,
		},
		LastActivity: &activity,
	}
}

func TestUpsertAll_InsertsAndOverwrites(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertAll(ctx, []domain.Dialog{
		dialog(domain.PeerChannel, 100, "News", base),
		dialog(domain.PeerUser, 200, "Alice", base.Add(time.Hour)),
	}))

	updated := dialog(domain.PeerChannel, 100, "News (renamed)", base.Add(2*time.Hour))
	updated.UnreadCount = 5
	require.NoError(t, repo.UpsertAll(ctx, []domain.Dialog{updated}))

	var count int64
	require.NoError(t, db.Model(&entities.DialogModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	got, err := repo.Get(ctx, 100, entities.TypeChannel)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "News (renamed)", *got.Title)
	assert.Equal(t, 5, got.UnreadCount)
	require.NotNil(t, got.AccessHash)
	assert.Equal(t, int64(700), *got.AccessHash)
}

func TestUpsertAll_SameIDDifferentType(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.UpsertAll(ctx, []domain.Dialog{
		dialog(domain.PeerUser, 42, "user", now),
		dialog(domain.PeerChat, 42, "chat", now),
	}))

	user, err := repo.Get(ctx, 42, entities.TypeUser)
	require.NoError(t, err)
	chat, err := repo.Get(ctx, 42, entities.TypeChat)
	require.NoError(t, err)

	assert.Equal(t, "user", *user.Title)
	assert.Equal(t, "chat", *chat.Title)
}

func TestUpsertAll_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)

	assert.NoError(t, repo.UpsertAll(context.Background(), nil))
}

func TestGet_Missing(t *testing.T) {
	repo, _ := newTestRepo(t)

	got, err := repo.Get(context.Background(), 1, entities.TypeChannel)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestList_NewestFirst(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertAll(ctx, []domain.Dialog{
		dialog(domain.PeerChannel, 1, "old", base),
		dialog(domain.PeerChannel, 2, "new", base.Add(time.Hour)),
	}))

	list, err := repo.List(ctx)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].DialogID)
	assert.Equal(t, int64(1), list[1].DialogID)
	assert.Nil(t, list[0].Username)
}
