package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/mitopipeline/internal/ui"
	"github.com/me/mitopipeline/pkg/pipeline"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded setups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagNoHistory {
				return fmt.Errorf("history is disabled (--no-history)")
			}
			st, err := openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			recs, err := st.ListSetups(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list setups: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No setups recorded.")
				return nil
			}

			var rows [][]string
			for _, rec := range recs {
				status := string(rec.Status)
				if rec.Status == pipeline.SetupStatusFailed {
					status += " (" + string(rec.ErrorCode) + ")"
				}
				if rec.DryRun {
					status += " dry-run"
				}
				rows = append(rows, []string{
					rec.ID,
					status,
					rec.Output,
					strings.Join(rec.Tasks, ", "),
					humanize.Time(rec.CreatedAt),
				})
			}
			fmt.Fprintln(out, ui.Table([]string{"ID", "STATUS", "OUTPUT", "TASKS", "CREATED"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of setups to show (0 for all)")
	return cmd
}
