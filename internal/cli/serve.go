package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/adknaupp/cytometry-manager/internal/app"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")
			setPort := func(cfg *app.Config) {
				if port != "" {
					cfg.Port = port
				}
			}
			return withApp(cmd, setPort, func(ctx context.Context, a *app.App) error {
				a.Log.Info("serving", "port", a.Cfg.Port, "driver", a.Cfg.DB.Driver)
				return a.Serve(ctx)
			})
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	return cmd
}
