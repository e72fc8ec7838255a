package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adknaupp/cytometry-manager/internal/app"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
)

func ReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [dataset-id]",
		Short: "Print per-sample population frequencies for a dataset",
		Long: `Print the relative frequency of each cell population for every sample in
the dataset whose subject has a recorded response.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
				rows, err := a.Services.Analytics.DatasetFrequencyReport(dbctx.Context{Ctx: ctx}, id)
				if err != nil {
					return fmt.Errorf("report dataset %d: %w", id, err)
				}
				return printReport(cmd, rows, asJSON)
			})
		},
	}
	cmd.Flags().Bool("json", false, "emit JSON instead of a table")
	return cmd
}

func printReport(cmd *cobra.Command, rows []cytometry.ReportRow, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No samples with a recorded response.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SAMPLE\tRESPONSE")
	for _, ct := range cytometry.CellTypes {
		fmt.Fprintf(w, "\t%s %%", ct)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s", row.SampleName, row.Response)
		for _, ct := range cytometry.CellTypes {
			fmt.Fprintf(w, "\t%.2f", row.Frequencies[ct])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
