package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adknaupp/cytometry-manager/internal/app"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
)

func ResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Evaluate a stored cohort or dataset against the current store",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cohort [cohort-id]",
		Short: "List the subjects a cohort matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
				subjects, err := a.Services.Cohort.Resolve(dbctx.Context{Ctx: ctx}, id)
				if err != nil {
					return fmt.Errorf("resolve cohort %d: %w", id, err)
				}
				printSubjects(cmd, subjects)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "dataset [dataset-id]",
		Short: "List the samples a dataset matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
				samples, err := a.Services.Dataset.Resolve(dbctx.Context{Ctx: ctx}, id)
				if err != nil {
					return fmt.Errorf("resolve dataset %d: %w", id, err)
				}
				printSamples(cmd, samples)
				return nil
			})
		},
	})
	return cmd
}

func parseID(raw string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(n), nil
}

func printSubjects(cmd *cobra.Command, subjects []*types.Subject) {
	out := cmd.OutOrStdout()
	if len(subjects) == 0 {
		fmt.Fprintln(out, "No subjects matched.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCONDITION\tAGE\tSEX\tTREATMENT\tRESPONSE")
	fmt.Fprintln(w, "--\t----\t---------\t---\t---\t---------\t--------")
	for _, s := range subjects {
		response := "-"
		if s.HasResponse() {
			response = string(*s.Response)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			s.ID, s.Name, s.Condition, s.Age, s.Sex, s.Treatment, response)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d subject(s)\n", len(subjects))
}

func printSamples(cmd *cobra.Command, samples []*types.Sample) {
	out := cmd.OutOrStdout()
	if len(samples) == 0 {
		fmt.Fprintln(out, "No samples matched.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSUBJECT\tPROJECT\tTYPE\tTIME\tTOTAL")
	fmt.Fprintln(w, "--\t----\t-------\t-------\t----\t----\t-----")
	for _, m := range samples {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%d\t%d\n",
			m.ID, m.Name, m.SubjectID, m.ProjectID, m.Type, m.TimeFromTreatmentStart, m.TotalCells())
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d sample(s)\n", len(samples))
}
