package wardrobe

import (
	"context"
	"testing"

	"letrystudio/logger"
	"letrystudio/models"
	"letrystudio/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAvatarReplacesAndPersists(t *testing.T) {
	store := test.NewMemoryStore()
	studio := NewStudio(store, logger.Discard())
	ctx := context.Background()

	a1, a2 := ref("a1"), ref("a2")
	require.NoError(t, studio.SetAvatar(ctx, a1))
	require.NoError(t, studio.SetAvatar(ctx, a2))

	assert.Equal(t, a2.ID, studio.Avatar().ID)
	stored, err := store.LoadAvatar(ctx)
	require.NoError(t, err)
	assert.Equal(t, a2.ID, stored.ID)
}

func TestSetAvatarPersistenceFailureKeepsAvatarInMemory(t *testing.T) {
	store := test.NewMemoryStore()
	studio := NewStudio(store, logger.Discard())
	ctx := context.Background()
	require.NoError(t, studio.SetAvatar(ctx, ref("old")))

	store.FailWrites(true)
	fresh := ref("new")
	err := studio.SetAvatar(ctx, fresh)
	require.Error(t, err)
	assert.True(t, models.IsPersistenceFailure(err))
	assert.Equal(t, fresh.ID, studio.Avatar().ID)

	stored, err := store.LoadAvatar(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored, "old avatar must not resurface")
}

func TestLoadRestoresSession(t *testing.T) {
	store := test.NewMemoryStore()
	ctx := context.Background()
	avatar := ref("me")
	enriched := models.NewPendingItem(ref("shirt"))
	enriched.Enriching = false
	enriched.Metadata = &topMetadata
	require.NoError(t, store.SaveAvatar(ctx, avatar))
	require.NoError(t, store.SaveWardrobe(ctx, []models.WardrobeItem{enriched}))

	studio := NewStudio(store, logger.Discard())
	pending, err := studio.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, avatar.ID, studio.Avatar().ID)
	require.Len(t, studio.Items(), 1)
	assert.Equal(t, topMetadata, *studio.Items()[0].Metadata)
}

func TestLoadFailureStartsEmptyAndDegraded(t *testing.T) {
	store := test.NewMemoryStore()
	store.FailLoads(true)
	studio := NewStudio(store, logger.Discard())

	pending, err := studio.Load(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsPersistenceFailure(err))
	assert.Empty(t, pending)
	assert.Nil(t, studio.Avatar())
	assert.Empty(t, studio.Items())
	assert.True(t, studio.Degraded())
}

func TestRemoveUnknownItem(t *testing.T) {
	studio := NewStudio(test.NewMemoryStore(), logger.Discard())

	err := studio.Remove(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestItemsReturnsCopy(t *testing.T) {
	f := newFixture(t, 0)
	f.classifier.Results["tee"] = topMetadata
	_, err := f.pipeline.Accept(context.Background(), ref("tee"))
	require.NoError(t, err)
	f.pipeline.Wait()

	items := f.studio.Items()
	items[0].Name = "changed"
	assert.Equal(t, "tee", f.studio.Items()[0].Name)
}
