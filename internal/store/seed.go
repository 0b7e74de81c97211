package store

import (
	"context"

	"github.com/Betty5562/BookNest/internal/logger"
)

// initialBooks is the starter catalog written on first run.
var initialBooks = []Book{
	{
		ID:          "1",
		Title:       "The Great Gatsby",
		Author:      "F. Scott Fitzgerald",
		Category:    "Fiction",
		Rating:      4.5,
		Description: "A classic novel about the American Dream.",
		ImageURI:    "https://images-na.ssl-images-amazon.com/images/I/81QuEGw8VPL.jpg",
	},
	{
		ID:          "2",
		Title:       "1984",
		Author:      "George Orwell",
		Category:    "Dystopian",
		Rating:      4.8,
		Description: "A dystopian novel about totalitarianism.",
		ImageURI:    "https://images-na.ssl-images-amazon.com/images/I/71rpa1-kyvL.jpg",
	},
	{
		ID:          "3",
		Title:       "Pride and Prejudice",
		Author:      "Jane Austen",
		Category:    "Romance",
		Rating:      4.6,
		Description: "A romantic novel about love and social class.",
		ImageURI:    "https://images-na.ssl-images-amazon.com/images/I/71Q1tPupKjL.jpg",
	},
	{
		ID:          "4",
		Title:       "The Adventures of Sherlock Holmes",
		Author:      "Arthur Conan Doyle",
		Category:    "Mystery",
		Rating:      4.7,
		Description: "A collection of detective stories featuring Sherlock Holmes.",
		ImageURI:    "https://images-na.ssl-images-amazon.com/images/I/81CX3u20OoL.jpg",
	},
}

// SeedInitialBooks writes the starter catalog when the catalog is
// empty and does nothing otherwise. Safe to call on every start.
func (s *Store) SeedInitialBooks(ctx context.Context) error {
	s.lock(keyBooks).Lock()
	defer s.lock(keyBooks).Unlock()

	var books []Book
	if _, err := s.readRecord(ctx, keyBooks, &books); err != nil {
		return err
	}
	if len(books) > 0 {
		return nil
	}
	if err := s.writeRecord(ctx, keyBooks, initialBooks); err != nil {
		return err
	}
	logger.Log.Infow("seeded initial catalog", "books", len(initialBooks))
	return nil
}
