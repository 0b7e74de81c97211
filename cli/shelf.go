package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Betty5562/BookNest/internal/store"
)

var shelfCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Your personal shelf",
	Long:  `Ownership, favorites, reading status and notes for the logged-in user.`,
}

var shelfOwnCmd = &cobra.Command{
	Use:   "own <book-id>",
	Short: "Toggle a book in/out of your library",
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
		owned, err := shelfSvc.ToggleOwned(ctx, user.ID, book.ID)
		if err != nil {
			return err
		}
		if owned {
			fmt.Printf("Added '%s' to your library\n", book.Title)
		} else {
			fmt.Printf("Removed '%s' from your library\n", book.Title)
		}
		return nil
	},
}

var shelfFavoriteCmd = &cobra.Command{
	Use:   "favorite <book-id>",
	Short: "Toggle a favorite",
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
		favorite, err := shelfSvc.ToggleFavorite(ctx, user.ID, book.ID)
		if err != nil {
			return err
		}
		if favorite {
			fmt.Printf("Favorited '%s'\n", book.Title)
		} else {
			fmt.Printf("Unfavorited '%s'\n", book.Title)
		}
		return nil
	},
}

var shelfStatusCmd = &cobra.Command{
	Use:   "status <book-id> <none|wantToRead|reading|read>",
	Short: "Set your reading status",
	Args:  cobra.ExactArgs(2),
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

		status := store.ReadingStatus(args[1])
		if args[1] == "none" {
			status = store.StatusNone
		}
		if err := shelfSvc.SetStatus(ctx, user.ID, book.ID, status); err != nil {
			return err
		}
		fmt.Printf("Status for '%s' set\n", book.Title)
		return nil
	},
}

var shelfNotesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Personal notes on a book",
}

var shelfNotesListCmd = &cobra.Command{
	Use:   "list <book-id>",
	Short: "List your notes for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}
		notes, err := shelfSvc.Notes(ctx, user.ID, args[0])
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("No notes yet.")
			return nil
		}
		for i, n := range notes {
			fmt.Printf("[%d] %s  %s\n", i, n.Date.Local().Format("2006-01-02 15:04"), n.Text)
		}
		return nil
	},
}

var shelfNotesAddCmd = &cobra.Command{
	Use:   "add <book-id> <text>",
	Short: "Add a note",
	Args:  cobra.MinimumNArgs(2),
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
		text := ""
		for i, part := range args[1:] {
			if i > 0 {
				text += " "
			}
			text += part
		}
		if _, err := shelfSvc.AddNote(ctx, user.ID, book.ID, text); err != nil {
			return err
		}
		fmt.Printf("Note added to '%s'\n", book.Title)
		return nil
	},
}

var shelfNotesDeleteCmd = &cobra.Command{
	Use:   "delete <book-id> <index>",
	Short: "Delete a note by index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid note index: %s", args[1])
		}
		if err := shelfSvc.DeleteNote(ctx, user.ID, args[0], index); err != nil {
			return err
		}
		fmt.Println("Note deleted.")
		return nil
	},
}

var shelfResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove every book from your shelf",
	Long:  `Drop all of your ownership marks, favorites, statuses and notes. The shared catalog is untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}
		if !resetYes {
			fmt.Println("This removes everything from your shelf. Re-run with --yes to confirm.")
			return nil
		}
		if err := shelfSvc.Reset(ctx, user.ID); err != nil {
			return err
		}
		fmt.Println("Shelf reset.")
		return nil
	},
}

var resetYes bool

func init() {
	shelfResetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip the confirmation prompt")

	shelfNotesCmd.AddCommand(shelfNotesListCmd)
	shelfNotesCmd.AddCommand(shelfNotesAddCmd)
	shelfNotesCmd.AddCommand(shelfNotesDeleteCmd)

	shelfCmd.AddCommand(shelfOwnCmd)
	shelfCmd.AddCommand(shelfFavoriteCmd)
	shelfCmd.AddCommand(shelfStatusCmd)
	shelfCmd.AddCommand(shelfNotesCmd)
	shelfCmd.AddCommand(shelfResetCmd)
	rootCmd.AddCommand(shelfCmd)
}
