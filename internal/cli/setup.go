package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/mitopipeline/internal/setup"
	"github.com/me/mitopipeline/internal/toolcheck"
	"github.com/me/mitopipeline/internal/ui"
)

func newSetupCmd() *cobra.Command {
	var flags setupFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Validate inputs and tools, then build the output workspace",
		Long: `setup checks that the input directory exists and its files are named
FILENAME.ext, that the reference directory exists when gatk or removenumts is
requested, and that every required tool can be run. It then creates one
folder per step under the output directory and prints the tasks to run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, p, err := flags.request(cmd)
			if err != nil {
				return err
			}
			req.DryRun = dryRun

			st, err := openHistory(cmd.Context())
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			res, err := setup.NewPreparer(p, st, logger).Prepare(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, ui.SuccessMsg("workspace planned at %s (dry run, nothing created)", res.Workspace.Root))
				for _, dir := range res.Workspace.Dirs {
					fmt.Fprintln(out, "  "+ui.Muted(dir))
				}
			} else {
				fmt.Fprintln(out, ui.SuccessMsg("workspace ready at %s", res.Workspace.Root))
			}
			fmt.Fprint(out, ui.KeyValues("  ",
				ui.KV("samples", strings.Join(res.Samples, ", ")),
				ui.KV("tools", formatTools(res.Tools)),
				ui.KV("tasks", strings.Join(res.Tasks, ", ")),
			))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the workspace layout without creating it")
	return cmd
}

func formatTools(avail toolcheck.Availability) string {
	var parts []string
	for _, sw := range avail.Software() {
		parts = append(parts, fmt.Sprintf("%s (%s)", sw, avail[sw].Location))
	}
	return strings.Join(parts, ", ")
}
