package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/mitopipeline/internal/setup"
	"github.com/me/mitopipeline/internal/ui"
)

func newCheckCmd() *cobra.Command {
	var flags setupFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate inputs and resolve tools without creating anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, p, err := flags.request(cmd)
			if err != nil {
				return err
			}

			res, err := setup.NewPreparer(p, nil, logger).Check(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.SuccessMsg("%d samples in %s", len(res.Samples), req.Directory))
			if len(res.Tools) == 0 {
				fmt.Fprintln(out, ui.SuccessMsg("no external software required"))
				return nil
			}
			var rows [][]string
			for _, sw := range res.Tools.Software() {
				r := res.Tools[sw]
				rows = append(rows, []string{sw.String(), r.Location.String(), r.Path})
			}
			fmt.Fprintln(out, ui.Table([]string{"SOFTWARE", "LOCATION", "PATH"}, rows))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
