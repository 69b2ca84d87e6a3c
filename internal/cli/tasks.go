package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/mitopipeline/internal/stepgraph"
)

func newTasksCmd() *cobra.Command {
	var flags setupFlags
	var wrappers bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Print the tasks a job driver must run for the requested steps",
		Long: `tasks prints one task folder per line. Software-backed steps are listed
in request order; when none are requested, the last requested step in
pipeline order is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, p, err := flags.request(cmd)
			if err != nil {
				return err
			}

			tasks, err := stepgraph.ResolveWrappers(p.TaskNames, p.Catalog, req.Steps, p.SoftwareSteps)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tn := range tasks {
				if wrappers {
					fmt.Fprintf(out, "%s\t%s\n", tn.Folder, tn.Wrapper)
				} else {
					fmt.Fprintln(out, tn.Folder)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&wrappers, "wrappers", false, "Also print the job-template wrapper of each task")
	return cmd
}
