package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Betty5562/BookNest/internal/store"
)

var (
	exportFormat string
	exportOutput string
	importInput  string
)

// libraryEntry is one row of an exported shelf: the catalog entry plus
// the owner's annotation.
type libraryEntry struct {
	Book       store.Book       `json:"book"`
	Annotation store.Annotation `json:"annotation"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data",
}

var exportLibraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Export your annotated shelf",
	Long:  `Export every book you have annotated, with its shelf state, to JSON or CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}

		annotations, err := shelfSvc.Annotations(ctx, user.ID)
		if err != nil {
			return err
		}
		books, err := catalogSvc.List(ctx)
		if err != nil {
			return err
		}

		entries := []libraryEntry{}
		for _, b := range books {
			if a, ok := annotations[b.ID]; ok {
				entries = append(entries, libraryEntry{Book: b, Annotation: a})
			}
		}

		var outputData []byte
		switch strings.ToLower(exportFormat) {
		case "json":
			outputData, err = json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
		case "csv":
			outputData, err = entriesToCSV(entries)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported format %q (json or csv)", exportFormat)
		}

		if exportOutput == "" {
			fmt.Println(string(outputData))
			return nil
		}
		if err := os.WriteFile(exportOutput, outputData, 0644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("Exported %d entries to %s\n", len(entries), exportOutput)
		return nil
	},
}

func entriesToCSV(entries []libraryEntry) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"id", "title", "author", "category", "rating", "owned", "favorite", "status", "notes"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{
			e.Book.ID,
			e.Book.Title,
			e.Book.Author,
			e.Book.Category,
			strconv.FormatFloat(e.Book.Rating, 'f', 1, 64),
			strconv.FormatBool(e.Annotation.IsOwned),
			strconv.FormatBool(e.Annotation.IsFavorite),
			string(e.Annotation.ReadingStatus),
			strconv.Itoa(len(e.Annotation.Notes)),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import data",
}

var importLibraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Import a JSON shelf export",
	Long:  `Restore annotations from a JSON export. Books missing from the catalog are re-added with their exported ids.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}
		if importInput == "" {
			return fmt.Errorf("input file is required (--input)")
		}

		data, err := os.ReadFile(importInput)
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}
		var entries []libraryEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parse import: %w", err)
		}

		// Re-add missing catalog entries first so the annotations have
		// something to point at.
		err = st.MutateBooks(ctx, func(books []store.Book) ([]store.Book, error) {
			known := map[string]bool{}
			for _, b := range books {
				known[b.ID] = true
			}
			for _, e := range entries {
				if !known[e.Book.ID] {
					books = append(books, e.Book)
					known[e.Book.ID] = true
				}
			}
			return books, nil
		})
		if err != nil {
			return err
		}

		err = st.MutateUserAnnotations(ctx, user.ID, func(annotations map[string]store.Annotation) (map[string]store.Annotation, error) {
			for _, e := range entries {
				annotations[e.Book.ID] = e.Annotation
			}
			return annotations, nil
		})
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d entries.\n", len(entries))
		return nil
	},
}

func init() {
	exportLibraryCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or csv")
	exportLibraryCmd.Flags().StringVar(&exportOutput, "output", "", "Output file (stdout when empty)")
	importLibraryCmd.Flags().StringVar(&importInput, "input", "", "JSON export to restore")

	exportCmd.AddCommand(exportLibraryCmd)
	importCmd.AddCommand(importLibraryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
