package shelf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Betty5562/BookNest/internal/kv/memkv"
	"github.com/Betty5562/BookNest/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New(memkv.New())
	t.Cleanup(func() { st.Close() })
	return NewService(st), st
}

func TestToggleOwnedCreatesAnnotationOnFirstUse(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	owned, err := svc.ToggleOwned(ctx, "u1", "1")
	require.NoError(t, err)
	assert.True(t, owned)

	annotations, err := st.ReadUserAnnotations(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, annotations["1"].IsOwned)

	owned, err = svc.ToggleOwned(ctx, "u1", "1")
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestToggleFavoriteKeepsOtherFlags(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.ToggleOwned(ctx, "u1", "1")
	require.NoError(t, err)
	favorite, err := svc.ToggleFavorite(ctx, "u1", "1")
	require.NoError(t, err)
	assert.True(t, favorite)

	annotations, err := st.ReadUserAnnotations(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, annotations["1"].IsOwned)
	assert.True(t, annotations["1"].IsFavorite)
}

func TestSetStatus(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetStatus(ctx, "u1", "1", store.StatusReading))
	annotations, err := st.ReadUserAnnotations(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusReading, annotations["1"].ReadingStatus)

	require.NoError(t, svc.SetStatus(ctx, "u1", "1", store.StatusNone))
	annotations, err = st.ReadUserAnnotations(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusNone, annotations["1"].ReadingStatus)

	err = svc.SetStatus(ctx, "u1", "1", store.ReadingStatus("finished"))
	assert.Error(t, err)
}

func TestNotes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddNote(ctx, "u1", "1", "first")
	require.NoError(t, err)
	assert.Equal(t, "first", first.Text)
	assert.False(t, first.Date.IsZero())

	_, err = svc.AddNote(ctx, "u1", "1", "second")
	require.NoError(t, err)

	notes, err := svc.Notes(ctx, "u1", "1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Text)
	assert.Equal(t, "second", notes[1].Text)

	require.NoError(t, svc.DeleteNote(ctx, "u1", "1", 0))
	notes, err = svc.Notes(ctx, "u1", "1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "second", notes[0].Text)

	assert.Error(t, svc.DeleteNote(ctx, "u1", "1", 5))
	assert.Error(t, svc.DeleteNote(ctx, "u1", "1", -1))
}

func TestOwnedAndFavoritesFollowCatalogOrder(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.WriteBooks(ctx, []store.Book{
		{ID: "1", Title: "One"},
		{ID: "2", Title: "Two"},
		{ID: "3", Title: "Three"},
	}))
	_, err := svc.ToggleOwned(ctx, "u1", "3")
	require.NoError(t, err)
	_, err = svc.ToggleOwned(ctx, "u1", "1")
	require.NoError(t, err)
	_, err = svc.ToggleFavorite(ctx, "u1", "2")
	require.NoError(t, err)

	owned, err := svc.Owned(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "1", owned[0].ID)
	assert.Equal(t, "3", owned[1].ID)

	favorites, err := svc.Favorites(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "2", favorites[0].ID)
}

func TestWithStatus(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.WriteBooks(ctx, []store.Book{
		{ID: "1"}, {ID: "2"},
	}))
	require.NoError(t, svc.SetStatus(ctx, "u1", "2", store.StatusRead))

	read, err := svc.WithStatus(ctx, "u1", store.StatusRead)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, "2", read[0].ID)

	// Unannotated books carry the zero status.
	unmarked, err := svc.WithStatus(ctx, "u1", store.StatusNone)
	require.NoError(t, err)
	require.Len(t, unmarked, 1)
	assert.Equal(t, "1", unmarked[0].ID)
}

func TestResetLeavesCatalogAndOtherUsersAlone(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.WriteBooks(ctx, []store.Book{{ID: "1", Title: "One"}}))
	_, err := svc.ToggleOwned(ctx, "u1", "1")
	require.NoError(t, err)
	_, err = svc.ToggleOwned(ctx, "u2", "1")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "u1"))

	mine, err := svc.Annotations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := svc.Annotations(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, theirs["1"].IsOwned)

	books, err := st.ReadBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}
