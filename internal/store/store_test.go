package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Betty5562/BookNest/internal/kv/memkv"
)

func newTestStore(t *testing.T) (*Store, *memkv.MemKV) {
	t.Helper()
	backend := memkv.New()
	s := New(backend)
	t.Cleanup(func() { s.Close() })
	return s, backend
}

func TestFreshStoreDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	books, err := s.ReadBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	users, err := s.ReadUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	current, err := s.ReadCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	annotations, err := s.ReadUserAnnotations(ctx, "anyUser")
	require.NoError(t, err)
	assert.Empty(t, annotations)
}

func TestBooksRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	books := []Book{
		{ID: "1", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Category: "Fiction", Rating: 4.5},
		{ID: "2", Title: "1984", Author: "George Orwell", Category: "Dystopian", Rating: 4.8},
	}
	require.NoError(t, s.WriteBooks(ctx, books))

	got, err := s.ReadBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, books, got)

	// Empty overwrite round-trips too.
	require.NoError(t, s.WriteBooks(ctx, []Book{}))
	got, err = s.ReadBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAnnotationIsolationBetweenUsers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	m1 := map[string]Annotation{"1": {IsOwned: true}}
	m2 := map[string]Annotation{"2": {IsFavorite: true}}

	require.NoError(t, s.WriteUserAnnotations(ctx, "u1", m1))
	require.NoError(t, s.WriteUserAnnotations(ctx, "u2", m2))

	got1, err := s.ReadUserAnnotations(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, m1, got1)

	got2, err := s.ReadUserAnnotations(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, m2, got2)
}

func TestAnnotationWritesDoNotLoseUpdatesUnderConcurrency(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			err := s.WriteUserAnnotations(ctx, userID, map[string]Annotation{
				"1": {IsOwned: true},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		userID := fmt.Sprintf("user-%d", i)
		annotations, err := s.ReadUserAnnotations(ctx, userID)
		require.NoError(t, err)
		assert.True(t, annotations["1"].IsOwned, "lost update for %s", userID)
	}
}

func TestLegacyNoteUpgrade(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	raw := `{"u1":{"1":{"isOwned":true,"notes":"hello"}}}`
	require.NoError(t, backend.Set(ctx, "userBooks", raw))

	annotations, err := s.ReadUserAnnotations(ctx, "u1")
	require.NoError(t, err)
	notes := annotations["1"].Notes
	require.Len(t, notes, 1)
	assert.Equal(t, "hello", notes[0].Text)
	assert.False(t, notes[0].Date.IsZero())

	// The upgrade happens on read only; the stored value keeps the
	// legacy shape until the next explicit write.
	stored, found, err := backend.Get(ctx, "userBooks")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, stored, `"notes":"hello"`)

	require.NoError(t, s.WriteUserAnnotations(ctx, "u1", annotations))
	stored, _, err = backend.Get(ctx, "userBooks")
	require.NoError(t, err)
	assert.NotContains(t, stored, `"notes":"hello"`)
	assert.Contains(t, stored, `"text":"hello"`)
}

func TestLegacyEmptyNoteStringReadsAsNoNotes(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "userBooks", `{"u1":{"1":{"notes":""}}}`))

	annotations, err := s.ReadUserAnnotations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, annotations["1"].Notes)
}

func TestCorruptRecordFailsLoudly(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "books", `{not json`))

	_, err := s.ReadBooks(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptRecord))
	assert.True(t, strings.Contains(err.Error(), "books"))
}

func TestSeedInitialBooksIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedInitialBooks(ctx))
	first, err := s.ReadBooks(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, s.SeedInitialBooks(ctx))
	second, err := s.ReadBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSeedDoesNotOverwriteExistingCatalog(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	mine := []Book{{ID: "x", Title: "Mine", Author: "Me", Category: "Fiction", Rating: 3}}
	require.NoError(t, s.WriteBooks(ctx, mine))
	require.NoError(t, s.SeedInitialBooks(ctx))

	got, err := s.ReadBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, mine, got)
}

func TestCurrentUserResolvesAgainstUsersRecord(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u := User{ID: "u1", Name: "Ada", Email: "ada@example.com", Password: "secret"}
	require.NoError(t, s.WriteUsers(ctx, []User{u}))
	require.NoError(t, s.WriteCurrentUser(ctx, u))

	// Mutate the authoritative record without touching the pointer;
	// reads must still see the new name.
	u.Name = "Ada Lovelace"
	require.NoError(t, s.WriteUsers(ctx, []User{u}))

	current, err := s.ReadCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "Ada Lovelace", current.Name)
}

func TestUpdateUserRewritesSessionPointer(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	u := User{ID: "u1", Name: "Ada", Email: "ada@example.com", Password: "secret"}
	require.NoError(t, s.WriteUsers(ctx, []User{u}))
	require.NoError(t, s.WriteCurrentUser(ctx, u))

	u.Email = "lovelace@example.com"
	require.NoError(t, s.UpdateUser(ctx, u))

	raw, found, err := backend.Get(ctx, "currentUser")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, raw, "lovelace@example.com")
}

func TestUpdateUserUnknownID(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.UpdateUser(context.Background(), User{ID: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestClearCurrentUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u := User{ID: "u1", Name: "Ada"}
	require.NoError(t, s.WriteCurrentUser(ctx, u))
	require.NoError(t, s.ClearCurrentUser(ctx))

	current, err := s.ReadCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestRemoveBookAnnotationsCascadesAcrossUsers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteUserAnnotations(ctx, "u1", map[string]Annotation{
		"1": {IsOwned: true},
		"2": {IsFavorite: true},
	}))
	require.NoError(t, s.WriteUserAnnotations(ctx, "u2", map[string]Annotation{
		"1": {ReadingStatus: StatusReading},
	}))

	require.NoError(t, s.RemoveBookAnnotations(ctx, "1"))

	got1, err := s.ReadUserAnnotations(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]Annotation{"2": {IsFavorite: true}}, got1)

	got2, err := s.ReadUserAnnotations(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, got2)
}

func TestClearAll(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedInitialBooks(ctx))
	require.NoError(t, s.WriteUsers(ctx, []User{{ID: "u1"}}))
	require.NoError(t, s.WriteCurrentUser(ctx, User{ID: "u1"}))
	require.NoError(t, s.ClearAll(ctx))

	books, err := s.ReadBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
	users, err := s.ReadUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	current, err := s.ReadCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}
