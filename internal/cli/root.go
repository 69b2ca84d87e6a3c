package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/mitopipeline/internal/config"
	"github.com/me/mitopipeline/internal/logging"
	"github.com/me/mitopipeline/internal/store"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagDB        string
	flagNoHistory bool

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the mitopipeline CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mitopipeline",
		Short: "Set up mitochondrial DNA analysis pipelines",
		Long: `mitopipeline checks the input BAM directory and the tools each requested
step needs, then lays out the output workspace and reports the tasks a job
driver has to run.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				flagLogLevel = "debug"
			}
			format, err := logging.ParseFormat(flagLogFormat)
			if err != nil {
				return err
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), format, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "History database path (default $MITOPIPELINE_DB or ~/.mitopipeline/history.db)")
	root.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record setups in the history database")

	root.AddCommand(
		newSetupCmd(),
		newCheckCmd(),
		newTasksCmd(),
		newStepsCmd(),
		newHistoryCmd(),
	)

	return root
}

// openHistory opens the history database, or returns nil when history is disabled.
func openHistory(ctx context.Context) (store.Store, error) {
	if flagNoHistory {
		return nil, nil
	}
	path := flagDB
	if path == "" {
		var err error
		if path, err = config.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	logger.Debug("history ready", "path", path)
	return st, nil
}
