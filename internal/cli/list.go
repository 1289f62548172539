package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"zap/internal/benchmark"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List registered benchmarks without running them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			filter := a.cfg.Filter
			if len(args) > 0 {
				filter = args[0]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "BENCHMARK\tGROUP\tTAGS")
			n := 0
			for _, bm := range reg.Benchmarks() {
				if !benchmark.MatchTags(bm.Tags(), a.cfg.Tags) || !benchmark.MatchFilter(bm.Key(), filter) {
					continue
				}
				tags := "-"
				if len(bm.Tags()) > 0 {
					tags = strings.Join(bm.Tags(), ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", bm.Key(), bm.Group(), tags)
				n++
			}
			if err := w.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%d benchmarks\n", n)
			return err
		},
	}
}
