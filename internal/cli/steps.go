package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/mitopipeline/internal/config"
	"github.com/me/mitopipeline/internal/ui"
)

func newStepsCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List pipeline steps in pipeline order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultSetupConfig()
			if configFile != "" {
				var err error
				if cfg, err = config.LoadFile(configFile); err != nil {
					return err
				}
			}
			p, err := cfg.Pipeline()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			var rows [][]string
			for _, step := range p.Catalog {
				backed := "no"
				if p.SoftwareSteps.Has(step) {
					backed = "yes"
				}
				rows = append(rows, []string{
					step.String(),
					p.Dependencies[step].String(),
					backed,
					p.TaskNames[step].Folder,
					strings.Join(p.Subfolders[step], ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"STEP", "SOFTWARE", "SOFTWARE STEP", "FOLDER", "SUBFOLDERS"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML run file with step overrides")
	return cmd
}
