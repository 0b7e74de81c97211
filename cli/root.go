// Package cli wires the BookNest command tree. Commands are thin: they
// parse input, call a service, and print.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Betty5562/BookNest/internal/auth"
	"github.com/Betty5562/BookNest/internal/catalog"
	"github.com/Betty5562/BookNest/internal/config"
	"github.com/Betty5562/BookNest/internal/kv"
	"github.com/Betty5562/BookNest/internal/kv/filekv"
	"github.com/Betty5562/BookNest/internal/kv/sqlitekv"
	"github.com/Betty5562/BookNest/internal/logger"
	"github.com/Betty5562/BookNest/internal/profile"
	"github.com/Betty5562/BookNest/internal/session"
	"github.com/Betty5562/BookNest/internal/shelf"
	"github.com/Betty5562/BookNest/internal/store"
)

var (
	cfg        *config.Config
	st         *store.Store
	sessions   *session.Manager
	authSvc    *auth.Service
	catalogSvc *catalog.Service
	shelfSvc   *shelf.Service
	profileSvc *profile.Service
)

var rootCmd = &cobra.Command{
	Use:     "booknest",
	Short:   "BookNest personal library",
	Long:    `BookNest tracks a shared book catalog and your personal shelf on this device. No server, no sync.`,
	Version: "1.0.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func setup() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Println("Configuration not initialized. Run: booknest init")
		return err
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		return err
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}

	st = store.New(backend)
	sessions = session.NewManager(cfg.Session.TokenPath, cfg.Session.Secret)
	authSvc = auth.NewService(st, sessions)
	catalogSvc = catalog.NewService(st)
	shelfSvc = shelf.NewService(st)
	profileSvc = profile.NewService(st)

	// The starter catalog appears on first run and never again.
	return st.SeedInitialBooks(context.Background())
}

func teardown() {
	if st != nil {
		if err := st.Close(); err != nil {
			logger.Log.Warnw("close store", "error", err)
		}
	}
	_ = logger.Sync()
}

func openBackend(cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		return sqlitekv.New(cfg.Storage.Path)
	case "file":
		return filekv.New(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// requireUser resolves the authenticated user or explains how to get
// one.
func requireUser(ctx context.Context) (*store.User, error) {
	user, err := authSvc.CurrentUser(ctx)
	if err != nil {
		fmt.Println("Not logged in. Run: booknest auth login")
		return nil, err
	}
	return user, nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create the ~/.booknest directory tree and a default configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Init()
		if err != nil {
			return err
		}
		path, _ := config.GetConfigPath()
		fmt.Printf("Configuration ready at %s\n", path)
		fmt.Printf("Storage: %s (%s)\n", c.Storage.Backend, c.Storage.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
