package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg.YtDlp.Binary))

			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if !status.Optional {
						missing++
					}
				}
				rows = append(rows, []string{
					status.Name,
					state,
					status.Version,
					status.Detail,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Dependency", "Status", "Version", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			if missing > 0 {
				fmt.Fprintln(out, "Subprocess strategies are disabled until the missing tools are installed; hosted services and the watch-page scrape still work.")
				return fmt.Errorf("%d required dependency missing", missing)
			}
			fmt.Fprintln(out, "All dependencies available")
			return nil
		},
	}
}
