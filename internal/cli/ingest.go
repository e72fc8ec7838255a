package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/adknaupp/cytometry-manager/internal/app"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [source]",
		Short: "Load a cell-count source into the store",
		Long: `Load a CSV of cell counts into the store. The source is a local path or
gs://bucket/object when object storage is enabled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skip, _ := cmd.Flags().GetBool("skip-if-populated")
			return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
				sum, err := a.Services.Ingestion.Ingest(ctx, args[0], services.IngestOptions{SkipIfPopulated: skip})
				if err != nil {
					return fmt.Errorf("ingest %s: %w", args[0], err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run: %s\n", sum.RunID)
				fmt.Fprintf(out, "Status: %s\n", sum.Status)
				if sum.Status == cytometry.IngestStatusSkipped {
					fmt.Fprintln(out, "Store already holds samples; nothing loaded.")
					return nil
				}
				r := sum.Result
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ROWS\tPROJECTS\tSUBJECTS\tSAMPLES\tCONFLICTS\tDURATION")
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n",
					r.Rows, r.Projects, r.Subjects, r.Samples, r.SubjectConflicts,
					sum.Duration.Round(time.Millisecond))
				w.Flush()
				return nil
			})
		},
	}
	cmd.Flags().Bool("skip-if-populated", false, "do nothing when the store already holds samples")
	return cmd
}

func RunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent ingestion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
				runs, err := a.Services.Ingestion.Runs(dbctx.Context{Ctx: ctx}, limit)
				if err != nil {
					return fmt.Errorf("failed to list runs: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No ingestion runs found.")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tROWS\tSAMPLES\tSTARTED\tERROR")
				fmt.Fprintln(w, "--\t------\t------\t----\t-------\t-------\t-----")
				for _, run := range runs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
						run.ID,
						run.Source,
						run.Status,
						run.Rows,
						run.Samples,
						run.StartedAt.Format(time.RFC3339),
						run.Error,
					)
				}
				w.Flush()
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 20, "maximum runs to show")
	return cmd
}
