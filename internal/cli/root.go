package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/adknaupp/cytometry-manager/internal/app"
	"github.com/adknaupp/cytometry-manager/internal/platform/ctxutil"
)

// NewRootCmd assembles the cytometry command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cytometry",
		Short: "Cytometry data manager",
		Long: `cytometry loads cell-count sources into the entity store and answers
cohort, dataset and frequency questions over it.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "YAML config file (overrides "+app.ConfigFileEnv+")")
	rootCmd.PersistentFlags().String("db-driver", "", "store driver: postgres or sqlite")
	rootCmd.PersistentFlags().String("sqlite-path", "", "SQLite database file")
	rootCmd.PersistentFlags().String("log-mode", "", "development, production or test")

	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(IngestCmd())
	rootCmd.AddCommand(RunsCmd())
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(ResolveCmd())
	rootCmd.AddCommand(ReportCmd())
	return rootCmd
}

// NewContext is cancelled on SIGINT or SIGTERM.
func NewContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig reads the environment and config file, then applies flags.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv(app.ConfigFileEnv, path); err != nil {
			return app.Config{}, err
		}
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("db-driver"); v != "" {
		cfg.DB.Driver = v
	}
	if v, _ := cmd.Flags().GetString("sqlite-path"); v != "" {
		cfg.DB.SQLitePath = v
	}
	if v, _ := cmd.Flags().GetString("log-mode"); v != "" {
		cfg.LogMode = v
	}
	if err := cfg.Validate(); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, mutate func(*app.Config), fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	ctx, cancel := NewContext()
	defer cancel()
	ctx = ctxutil.WithRequestMeta(ctx, ctxutil.RequestMeta{
		Origin:    ctxutil.OriginCLI,
		RequestID: uuid.NewString(),
	})

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
