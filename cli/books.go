package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Betty5562/BookNest/internal/catalog"
	"github.com/Betty5562/BookNest/internal/store"
)

var (
	listCategory  string
	listSearch    string
	listOwned     bool
	listFavorites bool
	deleteYes     bool
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Browse and manage the catalog",
	Long:  `List, search, add, edit and delete entries in the shared book catalog.`,
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}

		var books []store.Book
		switch {
		case listOwned:
			books, err = shelfSvc.Owned(ctx, user.ID)
		case listFavorites:
			books, err = shelfSvc.Favorites(ctx, user.ID)
		default:
			books, err = catalogSvc.Search(ctx, listSearch)
		}
		if err != nil {
			return err
		}
		if (listOwned || listFavorites) && listSearch != "" {
			filtered := books[:0]
			for _, b := range books {
				if strings.Contains(strings.ToLower(b.Title), strings.ToLower(listSearch)) {
					filtered = append(filtered, b)
				}
			}
			books = filtered
		}
		books = catalog.FilterByCategory(books, listCategory)

		if len(books) == 0 {
			fmt.Println("No books found. Add your first book with 'booknest books add'.")
			return nil
		}

		annotations, err := shelfSvc.Annotations(ctx, user.ID)
		if err != nil {
			return err
		}
		printBookTable(books, annotations)
		return nil
	},
}

var booksCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireUser(cmd.Context()); err != nil {
			return err
		}
		categories, err := catalogSvc.Categories(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("All")
		for _, c := range categories {
			fmt.Println(c)
		}
		return nil
	},
}

var booksShowCmd = &cobra.Command{
	Use:   "show <book-id>",
	Short: "Show one catalog entry with your shelf state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}
		book, err := catalogSvc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		annotations, err := shelfSvc.Annotations(ctx, user.ID)
		if err != nil {
			return err
		}
		printBookDetails(*book, annotations[book.ID])
		return nil
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a catalog entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := requireUser(ctx); err != nil {
			return err
		}

		book, err := promptBook(store.Book{Rating: 1})
		if err != nil {
			return err
		}
		added, err := catalogSvc.Add(ctx, book)
		if err != nil {
			return err
		}
		fmt.Printf("Added '%s' (ID: %s)\n", added.Title, added.ID)
		return nil
	},
}

var booksEditCmd = &cobra.Command{
	Use:   "edit <book-id>",
	Short: "Edit a catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := requireUser(ctx); err != nil {
			return err
		}
		existing, err := catalogSvc.Get(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Println("Press Enter to keep the current value.")
		book, err := promptBook(*existing)
		if err != nil {
			return err
		}
		if err := catalogSvc.Update(ctx, book); err != nil {
			return err
		}
		fmt.Printf("Updated '%s'\n", book.Title)
		return nil
	},
}

var booksDeleteCmd = &cobra.Command{
	Use:   "delete <book-id>",
	Short: "Delete a catalog entry for everyone",
	Long:  `Remove a book from the shared catalog and from every user's shelf.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := requireUser(ctx); err != nil {
			return err
		}
		book, err := catalogSvc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if !deleteYes {
			fmt.Printf("Delete '%s' for all users? Re-run with --yes to confirm.\n", book.Title)
			return nil
		}
		if err := catalogSvc.Delete(ctx, book.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted '%s'\n", book.Title)
		return nil
	},
}

// promptBook walks the book form, defaulting each field to the value
// already in initial.
func promptBook(initial store.Book) (store.Book, error) {
	sc := bufio.NewScanner(os.Stdin)
	book := initial

	book.Title = promptField(sc, "Title", initial.Title)
	book.Author = promptField(sc, "Author", initial.Author)
	book.Category = promptField(sc, "Category", initial.Category)

	ratingStr := promptField(sc, "Rating (1-5)", strconv.FormatFloat(initial.Rating, 'f', -1, 64))
	rating, err := strconv.ParseFloat(ratingStr, 64)
	if err != nil {
		return book, fmt.Errorf("invalid rating: %s", ratingStr)
	}
	book.Rating = rating

	book.Description = promptField(sc, "Description", initial.Description)
	book.ImageURI = promptField(sc, "Cover image URI (optional)", initial.ImageURI)
	return book, nil
}

func promptField(sc *bufio.Scanner, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !sc.Scan() {
		return current
	}
	text := strings.TrimSpace(sc.Text())
	if text == "" {
		return current
	}
	return text
}

func printBookTable(books []store.Book, annotations map[string]store.Annotation) {
	fmt.Printf("%-38s %-30s %-22s %-14s %-7s %s\n", "ID", "Title", "Author", "Category", "Rating", "Shelf")
	fmt.Println(strings.Repeat("-", 120))
	for _, b := range books {
		a := annotations[b.ID]
		marks := []string{}
		if a.IsOwned {
			marks = append(marks, "owned")
		}
		if a.IsFavorite {
			marks = append(marks, "favorite")
		}
		if a.ReadingStatus != store.StatusNone {
			marks = append(marks, string(a.ReadingStatus))
		}
		rating := ""
		if cfg == nil || cfg.UI.ShowRatings {
			rating = strconv.FormatFloat(b.Rating, 'f', 1, 64)
		}
		fmt.Printf("%-38s %-30s %-22s %-14s %-7s %s\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.Author, 22),
			truncateString(b.Category, 14),
			rating,
			strings.Join(marks, ", "))
	}
}

func printBookDetails(b store.Book, a store.Annotation) {
	fmt.Printf("%s\n", b.Title)
	fmt.Printf("Author: %s\n", b.Author)
	fmt.Printf("Category: %s\n", b.Category)
	fmt.Printf("Rating: %.1f/5\n", b.Rating)
	fmt.Printf("Description: %s\n", b.Description)
	if img := b.ImageURL(); img != "" {
		fmt.Printf("Cover: %s\n", img)
	}
	fmt.Printf("Owned: %t | Favorite: %t", a.IsOwned, a.IsFavorite)
	if a.ReadingStatus != store.StatusNone {
		fmt.Printf(" | Status: %s", a.ReadingStatus)
	}
	fmt.Println()
	if len(a.Notes) > 0 {
		fmt.Println("Notes:")
		for i, n := range a.Notes {
			fmt.Printf("  [%d] %s  %s\n", i, n.Date.Local().Format("2006-01-02 15:04"), n.Text)
		}
	}
}

func init() {
	booksListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	booksListCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive title search")
	booksListCmd.Flags().BoolVar(&listOwned, "owned", false, "Only books on your shelf")
	booksListCmd.Flags().BoolVar(&listFavorites, "favorites", false, "Only your favorites")
	booksDeleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "Skip the confirmation prompt")

	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksCategoriesCmd)
	booksCmd.AddCommand(booksShowCmd)
	booksCmd.AddCommand(booksAddCmd)
	booksCmd.AddCommand(booksEditCmd)
	booksCmd.AddCommand(booksDeleteCmd)
	rootCmd.AddCommand(booksCmd)
}
