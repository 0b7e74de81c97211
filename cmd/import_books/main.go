// Command import_books bulk-loads catalog entries from a JSON file
// into the local store. Entries without an id get one generated;
// entries whose id already exists are skipped.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/Betty5562/BookNest/internal/catalog"
	"github.com/Betty5562/BookNest/internal/config"
	"github.com/Betty5562/BookNest/internal/kv/sqlitekv"
	"github.com/Betty5562/BookNest/internal/store"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <books.json>\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration not initialized. Run: booknest init\n")
		os.Exit(1)
	}

	backend, err := sqlitekv.New(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	st := store.New(backend)
	defer st.Close()

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	var incoming []store.Book
	if err := json.Unmarshal(data, &incoming); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing input: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	fmt.Printf("Importing %d books...\n", len(incoming))

	successCount := 0
	skipCount := 0
	errorCount := 0

	for _, book := range incoming {
		fmt.Printf("Importing: %s by %s... ", book.Title, book.Author)

		if err := catalog.Validate(book); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		if book.ID == "" {
			book.ID = uuid.NewString()
		}
		if strings.TrimSpace(book.Category) == "" {
			book.Category = catalog.DefaultCategory
		}

		skipped := false
		err := st.MutateBooks(ctx, func(books []store.Book) ([]store.Book, error) {
			for _, existing := range books {
				if existing.ID == book.ID {
					skipped = true
					return books, nil
				}
			}
			return append(books, book), nil
		})
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		if skipped {
			fmt.Println("SKIPPED (already in catalog)")
			skipCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %s)\n", book.ID)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Skipped: %d\n", skipCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		books, err := st.ReadBooks(ctx)
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
			return
		}
		fmt.Println("\nCatalog:")
		fmt.Printf("%-38s %-50s %-30s\n", "ID", "Title", "Author")
		fmt.Println(strings.Repeat("-", 120))
		for _, book := range books {
			fmt.Printf("%-38s %-50s %-30s\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30))
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
