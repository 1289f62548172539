package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"zap/internal/report"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [benchmark]",
		Short: "Show recorded runs, or the history of one benchmark",
		Long: `Without arguments, lists the most recent runs recorded with --history.
With a benchmark name, lists that benchmark's recorded results, newest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.historyPath()
			store, err := newStoreFunc(path)
			if err != nil {
				return fmt.Errorf("failed to open history %s: %w", path, err)
			}
			defer store.Close()

			ctx := cmd.Context()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

			if len(args) == 0 {
				runs, err := store.ListRuns(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to list runs: %w", err)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
					return nil
				}
				fmt.Fprintln(w, "RUN\tSTARTED\tBENCHMARKS\tIMPROVED\tREGRESSED")
				for _, r := range runs {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
						r.ID, r.StartedAt.Format(time.DateTime), r.Benchmarks, r.Improved, r.Regressed)
				}
				return w.Flush()
			}

			records, err := store.QueryHistory(ctx, args[0], limit)
			if err != nil {
				return fmt.Errorf("failed to query history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No history for %s.\n", args[0])
				return nil
			}
			fmt.Fprintln(w, "RUN\tSTARTED\tMEAN\tMEDIAN\tSAMPLES\tCHANGE")
			for _, r := range records {
				change := "-"
				if r.ChangePct != nil {
					change = fmt.Sprintf("%s (%s)", report.FormatPercent(*r.ChangePct), r.Change)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					r.RunID, r.CreatedAt.Format(time.DateTime), report.FormatTime(r.Mean),
					report.FormatTime(r.Median), r.Samples, change)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of rows")
	return cmd
}
