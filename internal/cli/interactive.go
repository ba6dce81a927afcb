package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roboco-io/docxinspect/internal/config"
	"github.com/roboco-io/docxinspect/internal/shell"
)

var watchChanges bool

var interactiveFlagKeys = map[string]string{
	"interactive.watch": "watch",
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive [file]",
	Short: "Start an interactive inspection session",
	Long: `Start an interactive session. Select a file with "open <path>", run
"analyze" and print or save the result. Analyses run one at a time in the
background; with --watch the selected file is re-analyzed when it changes.

Type "help" inside the session for all commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, interactiveFlagKeys)
		if err != nil {
			return err
		}
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return runSession(cmd, cfg, newLogger(cmd, cfg), path)
	},
}

func init() {
	interactiveCmd.Flags().BoolVar(&watchChanges, "watch", false, "re-analyze the selected file when it changes")

	rootCmd.AddCommand(interactiveCmd)
}

func runSession(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, path string) error {
	s := shell.New(cmd.InOrStdin(), cmd.OutOrStdout(), shell.Options{
		Config: cfg,
		Logger: logger,
		Path:   path,
	})
	err := s.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
