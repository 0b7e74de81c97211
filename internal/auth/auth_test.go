package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Betty5562/BookNest/internal/kv/memkv"
	"github.com/Betty5562/BookNest/internal/session"
	"github.com/Betty5562/BookNest/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store, *session.Manager) {
	t.Helper()
	st := store.New(memkv.New())
	t.Cleanup(func() { st.Close() })
	sessions := session.NewManager(filepath.Join(t.TempDir(), "session.token"), "test-secret")
	return NewService(st, sessions), st, sessions
}

func TestSignUpCreatesAccountAndSession(t *testing.T) {
	svc, st, sessions := newTestService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	users, err := st.ReadUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ada@example.com", users[0].Email)
	assert.Equal(t, "secret1", users[0].Password)

	current, err := st.ReadCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)

	userID, err := sessions.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Ada", "a@b.com", "secret1")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "Imposter", "a@b.com", "other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateAccount))

	users, err := st.ReadUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1, "failed signup must not append a record")
}

func TestLogIn(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.WriteUsers(ctx, []store.User{
		{ID: "u1", Name: "A", Email: "a@b.com", Password: "secret"},
	}))

	user, err := svc.LogIn(ctx, "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	current, err := st.ReadCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "u1", current.ID)
}

func TestLogInWrongPasswordLeavesSessionUntouched(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.WriteUsers(ctx, []store.User{
		{ID: "u1", Name: "A", Email: "a@b.com", Password: "secret"},
		{ID: "u2", Name: "B", Email: "b@b.com", Password: "hunter2"},
	}))
	_, err := svc.LogIn(ctx, "b@b.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.LogIn(ctx, "a@b.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	current, err := st.ReadCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "u2", current.ID, "failed login must not change the session")
}

func TestLogInUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.LogIn(context.Background(), "nobody@b.com", "x")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogOut(t *testing.T) {
	svc, st, sessions := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, svc.LogOut(ctx))

	current, err := st.ReadCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.False(t, sessions.Active())

	_, err = svc.CurrentUser(ctx)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestCurrentUserNeedsBothTokenAndPointer(t *testing.T) {
	svc, st, sessions := newTestService(t)
	ctx := context.Background()

	// Pointer without token.
	require.NoError(t, st.WriteCurrentUser(ctx, store.User{ID: "u1"}))
	_, err := svc.CurrentUser(ctx)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	// Token without pointer.
	require.NoError(t, st.ClearCurrentUser(ctx))
	require.NoError(t, sessions.Open("u1"))
	_, err = svc.CurrentUser(ctx)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}
