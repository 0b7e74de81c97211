// Package profile handles account edits and the profile stats view.
package profile

import (
	"context"
	"strings"

	"github.com/Betty5562/BookNest/internal/store"
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Stats is the summary the profile screen shows.
type Stats struct {
	Owned     int
	Favorites int
	Total     int
}

// Update edits the user's name and email. The store rewrites the
// session pointer along with the users entry.
func (s *Service) Update(ctx context.Context, user store.User, name, email string) (*store.User, error) {
	user.Name = strings.TrimSpace(name)
	user.Email = strings.TrimSpace(email)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetAvatar stores a new avatar URI for the user.
func (s *Service) SetAvatar(ctx context.Context, user store.User, avatarURI string) (*store.User, error) {
	user.Avatar = avatarURI
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Stats counts the user's owned and favorite books against the catalog
// total.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	annotations, err := s.store.ReadUserAnnotations(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	books, err := s.store.ReadBooks(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(books)}
	for _, a := range annotations {
		if a.IsOwned {
			stats.Owned++
		}
		if a.IsFavorite {
			stats.Favorites++
		}
	}
	return stats, nil
}
