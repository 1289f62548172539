package cli

import (
	"fmt"
	"text/tabwriter"

	"zap/internal/benchmark"
	"zap/internal/report"
	"zap/internal/stats"

	"github.com/spf13/cobra"
)

func newBaselineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Inspect and compare baseline files",
	}
	cmd.AddCommand(newBaselineShowCmd(a), newBaselineDiffCmd(a))
	return cmd
}

func loadBaseline(path string) (*benchmark.Baseline, error) {
	b := benchmark.NewBaseline()
	found, err := b.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline %s: %w", path, err)
	}
	if !found {
		return nil, fmt.Errorf("no baseline found at '%s'", path)
	}
	return b, nil
}

func newBaselineShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the entries of a baseline file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.baselinePath()
			if len(args) > 0 {
				path = args[0]
			}
			b, err := loadBaseline(path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "BENCHMARK\tMEAN\tSTDDEV\tCI95")
			for _, e := range b.Entries() {
				fmt.Fprintf(w, "%s\t%s\t%s\t[%s, %s]\n", e.Name,
					report.FormatTime(e.Mean), report.FormatTime(e.StdDev),
					report.FormatTime(e.CILower), report.FormatTime(e.CIUpper))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if n := b.Skipped(); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d malformed lines skipped\n", n)
			}
			return nil
		},
	}
}

func newBaselineDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two baseline files",
		Long: `Compares every benchmark of NEW against the same benchmark in OLD using
the confidence interval test of a normal run. With --fail-threshold the
command fails when a benchmark regressed by more than that percentage.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := loadBaseline(args[0])
			if err != nil {
				return err
			}
			curr, err := loadBaseline(args[1])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "BENCHMARK\tOLD\tNEW\tCHANGE\tSTATUS")
			var verdicts []benchmark.Verdict
			for _, e := range curr.Entries() {
				old, ok := prev.Find(e.Name)
				if !ok {
					fmt.Fprintf(w, "%s\t-\t%s\t-\tnew\n", e.Name, report.FormatTime(e.Mean))
					continue
				}
				v := benchmark.Compare(e.Name, old, stats.Summary{
					Mean: e.Mean, StdDev: e.StdDev, CILower: e.CILower, CIUpper: e.CIUpper,
				})
				verdicts = append(verdicts, v)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, report.FormatTime(v.OldMean),
					report.FormatTime(v.NewMean), report.FormatPercent(v.ChangePct), v.Change)
			}
			for _, e := range prev.Entries() {
				if _, ok := curr.Find(e.Name); !ok {
					fmt.Fprintf(w, "%s\t%s\t-\t-\tremoved\n", e.Name, report.FormatTime(e.Mean))
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return checkRegressions(verdicts, a.cfg.FailThreshold)
		},
	}
}
