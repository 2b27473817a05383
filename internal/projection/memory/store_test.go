package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doodledocs/internal/projection"
)

func doc(id string, updated time.Time) *projection.Document {
	return &projection.Document{
		ID:        id,
		Title:     "t-" + id,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Now().UTC()

	require.NoError(t, store.Save(ctx, doc("a", now)))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "t-a", got.Title)

	// Mutating the returned record must not touch stored state.
	got.Title = "mutated"
	again, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "t-a", again.Title)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, projection.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "a"), "deleting an absent record is fine")
}

func TestStore_ListOrdersByMostRecentlyUpdated(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Now().UTC()

	require.NoError(t, store.Save(ctx, doc("old", base.Add(-2*time.Hour))))
	require.NoError(t, store.Save(ctx, doc("new", base)))
	require.NoError(t, store.Save(ctx, doc("mid", base.Add(-time.Hour))))

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "mid", docs[1].ID)
	assert.Equal(t, "old", docs[2].ID)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Save(ctx, doc("a", time.Now().UTC())))
	require.NoError(t, store.Reset(ctx))

	docs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
