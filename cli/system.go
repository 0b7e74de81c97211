package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Betty5562/BookNest/internal/config"
)

var clearYes bool

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "System information and maintenance",
}

var systemInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system info",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("System Information:")
		fmt.Println("-------------------")
		fmt.Printf("OS: %s\n", runtime.GOOS)
		fmt.Printf("Architecture: %s\n", runtime.GOARCH)
		fmt.Printf("Go Version: %s\n", runtime.Version())

		path, _ := config.GetConfigPath()
		fmt.Println("\nConfiguration:")
		fmt.Printf("  Config Path: %s\n", path)
		fmt.Printf("  Storage Backend: %s\n", cfg.Storage.Backend)
		fmt.Printf("  Storage Path: %s\n", cfg.Storage.Path)

		books, err := st.ReadBooks(cmd.Context())
		if err != nil {
			return err
		}
		users, err := st.ReadUsers(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("\nData:")
		fmt.Printf("  Catalog entries: %d\n", len(books))
		fmt.Printf("  Accounts: %d\n", len(users))
		return nil
	},
}

var systemSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the starter catalog",
	Long:  `Write the starter catalog if the catalog is empty. Does nothing otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := st.SeedInitialBooks(cmd.Context()); err != nil {
			return err
		}
		books, err := st.ReadBooks(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Catalog holds %d book(s).\n", len(books))
		return nil
	},
}

var systemClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe all data",
	Long:  `Delete the catalog, all accounts, all shelves and the session. There is no undo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			fmt.Println("This wipes all data on this device. Re-run with --yes to confirm.")
			return nil
		}
		if err := st.ClearAll(cmd.Context()); err != nil {
			return err
		}
		if err := sessions.Close(); err != nil {
			return err
		}
		fmt.Println("All data cleared.")
		return nil
	},
}

func init() {
	systemClearCmd.Flags().BoolVar(&clearYes, "yes", false, "Skip the confirmation prompt")

	systemCmd.AddCommand(systemInfoCmd)
	systemCmd.AddCommand(systemSeedCmd)
	systemCmd.AddCommand(systemClearCmd)
	rootCmd.AddCommand(systemCmd)
}
