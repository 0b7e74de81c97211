// Package shelf is the personalization layer: per-user, per-book
// ownership, favorites, reading status and notes, kept apart from the
// shared catalog.
package shelf

import (
	"context"
	"fmt"
	"time"

	"github.com/Betty5562/BookNest/internal/store"
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Annotations returns the user's full annotation map, empty for a user
// who never annotated anything.
func (s *Service) Annotations(ctx context.Context, userID string) (map[string]store.Annotation, error) {
	return s.store.ReadUserAnnotations(ctx, userID)
}

// ToggleOwned flips ownership of a book and returns the new state. The
// annotation record is created on first use.
func (s *Service) ToggleOwned(ctx context.Context, userID, bookID string) (bool, error) {
	var owned bool
	err := s.mutate(ctx, userID, bookID, func(a *store.Annotation) error {
		a.IsOwned = !a.IsOwned
		owned = a.IsOwned
		return nil
	})
	return owned, err
}

// ToggleFavorite flips the favorite flag and returns the new state.
func (s *Service) ToggleFavorite(ctx context.Context, userID, bookID string) (bool, error) {
	var favorite bool
	err := s.mutate(ctx, userID, bookID, func(a *store.Annotation) error {
		a.IsFavorite = !a.IsFavorite
		favorite = a.IsFavorite
		return nil
	})
	return favorite, err
}

// SetStatus sets the reading status marker.
func (s *Service) SetStatus(ctx context.Context, userID, bookID string, status store.ReadingStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown reading status %q", status)
	}
	return s.mutate(ctx, userID, bookID, func(a *store.Annotation) error {
		a.ReadingStatus = status
		return nil
	})
}

// AddNote appends a dated note and returns it.
func (s *Service) AddNote(ctx context.Context, userID, bookID, text string) (*store.Note, error) {
	note := store.Note{Text: text, Date: time.Now().UTC()}
	err := s.mutate(ctx, userID, bookID, func(a *store.Annotation) error {
		a.Notes = append(a.Notes, note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes the note at index.
func (s *Service) DeleteNote(ctx context.Context, userID, bookID string, index int) error {
	return s.mutate(ctx, userID, bookID, func(a *store.Annotation) error {
		if index < 0 || index >= len(a.Notes) {
			return fmt.Errorf("no note at index %d", index)
		}
		a.Notes = append(a.Notes[:index], a.Notes[index+1:]...)
		return nil
	})
}

// Notes returns the notes for one book, legacy values already upgraded
// by the decode path.
func (s *Service) Notes(ctx context.Context, userID, bookID string) (store.NoteList, error) {
	annotations, err := s.store.ReadUserAnnotations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return annotations[bookID].Notes, nil
}

// Owned returns the catalog entries the user marked as owned.
func (s *Service) Owned(ctx context.Context, userID string) ([]store.Book, error) {
	return s.filter(ctx, userID, func(a store.Annotation) bool { return a.IsOwned })
}

// Favorites returns the catalog entries the user marked as favorite.
func (s *Service) Favorites(ctx context.Context, userID string) ([]store.Book, error) {
	return s.filter(ctx, userID, func(a store.Annotation) bool { return a.IsFavorite })
}

// WithStatus returns the catalog entries carrying the given reading
// status for the user.
func (s *Service) WithStatus(ctx context.Context, userID string, status store.ReadingStatus) ([]store.Book, error) {
	return s.filter(ctx, userID, func(a store.Annotation) bool { return a.ReadingStatus == status })
}

// Reset drops every annotation the user has, leaving the shared catalog
// untouched.
func (s *Service) Reset(ctx context.Context, userID string) error {
	return s.store.WriteUserAnnotations(ctx, userID, map[string]store.Annotation{})
}

func (s *Service) filter(ctx context.Context, userID string, keep func(store.Annotation) bool) ([]store.Book, error) {
	annotations, err := s.store.ReadUserAnnotations(ctx, userID)
	if err != nil {
		return nil, err
	}
	books, err := s.store.ReadBooks(ctx)
	if err != nil {
		return nil, err
	}
	matched := []store.Book{}
	for _, b := range books {
		if keep(annotations[b.ID]) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (s *Service) mutate(ctx context.Context, userID, bookID string, fn func(*store.Annotation) error) error {
	return s.store.MutateUserAnnotations(ctx, userID, func(annotations map[string]store.Annotation) (map[string]store.Annotation, error) {
		a := annotations[bookID]
		if err := fn(&a); err != nil {
			return nil, err
		}
		annotations[bookID] = a
		return annotations, nil
	})
}
