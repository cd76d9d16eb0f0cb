package store

import (
	"context"
	"testing"

	"letrystudio/dbhelper"
	"letrystudio/logger"
	"letrystudio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db := dbhelper.SetupTestDB(t.TempDir())
	cleaner := dbhelper.SetupCleaner(db)
	t.Cleanup(func() {
		require.NoError(t, cleaner())
	})
	return NewGormStore(db, logger.Discard())
}

func ids(items []models.WardrobeItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestLoadAvatarEmpty(t *testing.T) {
	s := newTestStore(t)

	avatar, err := s.LoadAvatar(context.Background())
	require.NoError(t, err)
	assert.Nil(t, avatar)
}

func TestSaveAvatarReplacesPrevious(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a1 := models.NewImageRef("first.png", "image/png", []byte("one"))
	a2 := models.NewImageRef("second.png", "image/png", []byte("two"))
	require.NoError(t, s.SaveAvatar(ctx, a1))
	require.NoError(t, s.SaveAvatar(ctx, a2))

	avatar, err := s.LoadAvatar(ctx)
	require.NoError(t, err)
	require.NotNil(t, avatar)
	assert.Equal(t, a2.ID, avatar.ID)
	assert.Equal(t, []byte("two"), avatar.Payload)

	var count int64
	s.db.Model(&models.AvatarRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSaveWardrobeReplacesAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := models.NewPendingItem(models.NewImageRef("old", "image/png", []byte("o")))
	require.NoError(t, s.SaveWardrobe(ctx, []models.WardrobeItem{old}))

	shirt := models.NewPendingItem(models.NewImageRef("shirt", "image/png", []byte("s")))
	metadata := models.ClothingMetadata{Category: models.CategoryTop, Color: "Navy", Season: models.SeasonSummer, Style: models.StyleCasual}
	shirt.Metadata = &metadata
	shirt.Enriching = false
	boots := models.NewPendingItem(models.NewImageRef("boots", "image/jpeg", []byte("b")))

	require.NoError(t, s.SaveWardrobe(ctx, []models.WardrobeItem{shirt, boots}))

	items, err := s.LoadWardrobe(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{shirt.ID, boots.ID}, ids(items))

	for _, item := range items {
		switch item.ID {
		case shirt.ID:
			assert.False(t, item.Enriching)
			require.NotNil(t, item.Metadata)
			assert.Equal(t, metadata, *item.Metadata)
		case boots.ID:
			assert.True(t, item.Enriching)
			assert.Nil(t, item.Metadata)
			assert.Equal(t, []byte("b"), item.Payload)
		}
	}
}

func TestSaveWardrobeEmptyClears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := models.NewPendingItem(models.NewImageRef("scarf", "image/png", []byte("x")))
	require.NoError(t, s.SaveWardrobe(ctx, []models.WardrobeItem{item}))
	require.NoError(t, s.SaveWardrobe(ctx, nil))

	items, err := s.LoadWardrobe(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSaveWardrobeFailureIsPersistenceFailure(t *testing.T) {
	s := NewGormStore(dbhelper.SetupTestDB(t.TempDir()), logger.Discard())
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = s.SaveWardrobe(context.Background(), []models.WardrobeItem{
		models.NewPendingItem(models.NewImageRef("hat", "image/png", nil)),
	})
	require.Error(t, err)
	assert.True(t, models.IsPersistenceFailure(err))
}
