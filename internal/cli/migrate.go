package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adknaupp/cytometry-manager/internal/app"
	"github.com/adknaupp/cytometry-manager/internal/data/db"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noAuto := func(cfg *app.Config) { cfg.AutoMigrate = false }
			return withApp(cmd, noAuto, func(ctx context.Context, a *app.App) error {
				if err := db.Migrate(a.DB.WithContext(ctx)); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Schema migrated (%s)\n", a.Cfg.DB.Driver)
				return nil
			})
		},
	}
}
