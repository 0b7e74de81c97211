// Package catalog manages the shared book catalog: CRUD, search and
// category filtering. The catalog is one flat record, so every
// operation is a linear scan; fine at the tens-to-hundreds scale this
// app sees.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Betty5562/BookNest/internal/logger"
	"github.com/Betty5562/BookNest/internal/store"
)

// ErrBookNotFound reports an operation against an id missing from the
// catalog.
var ErrBookNotFound = errors.New("book not found")

// DefaultCategory is assigned when a book is saved with a blank
// category.
const DefaultCategory = "Uncategorized"

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Validate checks the field constraints the entry form enforces.
func Validate(b store.Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(b.Author) == "" {
		return fmt.Errorf("author is required")
	}
	if b.Rating < 1 || b.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}

func normalize(b store.Book) store.Book {
	b.Category = strings.TrimSpace(b.Category)
	if b.Category == "" {
		b.Category = DefaultCategory
	}
	return b
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]store.Book, error) {
	return s.store.ReadBooks(ctx)
}

// Get returns one entry by id.
func (s *Service) Get(ctx context.Context, id string) (*store.Book, error) {
	books, err := s.store.ReadBooks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].ID == id {
			return &books[i], nil
		}
	}
	return nil, ErrBookNotFound
}

// Add appends a new entry. The id is generated here and is immutable
// afterwards.
func (s *Service) Add(ctx context.Context, b store.Book) (*store.Book, error) {
	if err := Validate(b); err != nil {
		return nil, err
	}
	b = normalize(b)
	b.ID = uuid.NewString()

	err := s.store.MutateBooks(ctx, func(books []store.Book) ([]store.Book, error) {
		return append(books, b), nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Infow("book added", "id", b.ID, "title", b.Title)
	return &b, nil
}

// Update replaces the entry matching b.ID in place.
func (s *Service) Update(ctx context.Context, b store.Book) error {
	if err := Validate(b); err != nil {
		return err
	}
	b = normalize(b)

	return s.store.MutateBooks(ctx, func(books []store.Book) ([]store.Book, error) {
		for i := range books {
			if books[i].ID == b.ID {
				books[i] = b
				return books, nil
			}
		}
		return nil, fmt.Errorf("update book %s: %w", b.ID, ErrBookNotFound)
	})
}

// Delete removes the entry and cascades into every user's annotations,
// so no one keeps private state for a book that no longer exists.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.MutateBooks(ctx, func(books []store.Book) ([]store.Book, error) {
		filtered := books[:0]
		found := false
		for _, b := range books {
			if b.ID == id {
				found = true
				continue
			}
			filtered = append(filtered, b)
		}
		if !found {
			return nil, fmt.Errorf("delete book %s: %w", id, ErrBookNotFound)
		}
		return filtered, nil
	})
	if err != nil {
		return err
	}

	if err := s.store.RemoveBookAnnotations(ctx, id); err != nil {
		return err
	}
	logger.Log.Infow("book deleted", "id", id)
	return nil
}

// Search returns entries whose title contains q, case-insensitively.
// An empty query matches everything.
func (s *Service) Search(ctx context.Context, q string) ([]store.Book, error) {
	books, err := s.store.ReadBooks(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(q)
	matched := []store.Book{}
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// Categories returns the distinct categories in catalog order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	books, err := s.store.ReadBooks(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	categories := []string{}
	for _, b := range books {
		if !seen[b.Category] {
			seen[b.Category] = true
			categories = append(categories, b.Category)
		}
	}
	return categories, nil
}

// FilterByCategory narrows books to one category. An empty category
// means no filtering.
func FilterByCategory(books []store.Book, category string) []store.Book {
	if category == "" {
		return books
	}
	filtered := []store.Book{}
	for _, b := range books {
		if b.Category == category {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
