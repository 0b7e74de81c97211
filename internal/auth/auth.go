// Package auth implements signup, login and logout over the local data
// layer. Identity is the users record; the session pointer and the
// on-disk token are written as side effects.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Betty5562/BookNest/internal/logger"
	"github.com/Betty5562/BookNest/internal/session"
	"github.com/Betty5562/BookNest/internal/store"
)

// ErrDuplicateAccount reports a signup with an email that already has
// an account.
var ErrDuplicateAccount = errors.New("an account with this email already exists")

// ErrInvalidCredentials reports a login with no matching email/password
// pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	store    *store.Store
	sessions *session.Manager
}

func NewService(st *store.Store, sessions *session.Manager) *Service {
	return &Service{store: st, sessions: sessions}
}

// SignUp creates a new account and opens a session for it. Emails are
// unique among users; the check runs under the users record lock so two
// racing signups cannot both slip through.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*store.User, error) {
	email = strings.TrimSpace(email)
	user := store.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: password,
	}

	err := s.store.MutateUsers(ctx, func(users []store.User) ([]store.User, error) {
		for _, existing := range users {
			if existing.Email == email {
				return nil, ErrDuplicateAccount
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.openSession(ctx, user); err != nil {
		return nil, err
	}
	logger.Log.Infow("account created", "user", user.ID)
	return &user, nil
}

// LogIn scans users for an exact email/password match. On a miss the
// session pointer is left untouched.
func (s *Service) LogIn(ctx context.Context, email, password string) (*store.User, error) {
	users, err := s.store.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email && users[i].Password == password {
			if err := s.openSession(ctx, users[i]); err != nil {
				return nil, err
			}
			return &users[i], nil
		}
	}
	return nil, ErrInvalidCredentials
}

// LogOut clears the session pointer and the stored token.
func (s *Service) LogOut(ctx context.Context) error {
	if err := s.store.ClearCurrentUser(ctx); err != nil {
		return err
	}
	return s.sessions.Close()
}

// CurrentUser returns the authenticated user, or ErrInvalidCredentials
// when either the token or the session pointer is missing. Both must be
// present to gate the main application.
func (s *Service) CurrentUser(ctx context.Context) (*store.User, error) {
	if !s.sessions.Active() {
		return nil, ErrInvalidCredentials
	}
	user, err := s.store.ReadCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) openSession(ctx context.Context, user store.User) error {
	if err := s.store.WriteCurrentUser(ctx, user); err != nil {
		return err
	}
	return s.sessions.Open(user.ID)
}
