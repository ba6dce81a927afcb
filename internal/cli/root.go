package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roboco-io/docxinspect/internal/archive"
	"github.com/roboco-io/docxinspect/internal/config"
	"github.com/roboco-io/docxinspect/internal/report"
)

var version = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var (
	cfgFile       string
	verbose       bool
	quiet         bool
	tablesOnly    bool
	outputPath    string
	rawOutput     bool
	extractTo     string
	noInteractive bool
	reportFormat  string
	validate      bool
)

// rootFlagKeys maps config keys to the root flags that override them.
var rootFlagKeys = map[string]string{
	"report.tables_only":     "tables-only",
	"report.format":          "format",
	"report.validate_output": "validate",
}

var rootCmd = &cobra.Command{
	Use:   "docxinspect [file]",
	Short: "Inspect the XML structure of DOCX files, focused on tables",
	Long: `docxinspect extracts the XML parts of a DOCX file and analyzes its tables:
table properties, the column grid (widths in twips and pixels), every row
and cell (spans, merges, borders, shading, content preview) and the table
styles defined in styles.xml.

Without arguments an interactive session starts.

Environment variables override the config file (DOCXINSPECT_REPORT_FORMAT,
DOCXINSPECT_LOG_LEVEL, ...) and flags override both.

Examples:
  docxinspect document.docx
  docxinspect document.docx --tables-only
  docxinspect document.docx --tables-only --raw
  docxinspect document.docx -o report.txt
  docxinspect document.docx --extract-to ./parts
  docxinspect document.docx --format yaml`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.docxinspect/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "errors only, no progress output")

	rootCmd.Flags().BoolVar(&tablesOnly, "tables-only", false, "only show tables and table styles")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	rootCmd.Flags().BoolVar(&rawOutput, "raw", false, "show raw XML without analysis")
	rootCmd.Flags().StringVar(&extractTo, "extract-to", "", "extract all XML parts to a directory")
	rootCmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "never start the interactive session")
	rootCmd.Flags().BoolVar(&noInteractive, "no-gui", false, "alias for --no-interactive")
	rootCmd.Flags().StringVar(&reportFormat, "format", report.FormatStructured, "analysis format ("+strings.Join(report.Formats(), ", ")+")")
	rootCmd.Flags().BoolVar(&validate, "validate", false, "validate structured analyses against the JSON Schema")
	_ = rootCmd.Flags().MarkHidden("no-gui")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docxinspect %s\n", version)
	},
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, rootFlagKeys)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	if len(args) == 0 {
		if noInteractive {
			return errors.New("no input file given (see --help)")
		}
		return runSession(cmd, cfg, logger, "")
	}
	return inspectFile(cmd, args[0], cfg, logger)
}

func inspectFile(cmd *cobra.Command, path string, cfg *config.Config, logger *slog.Logger) error {
	if archive.DetectFormat(path) == archive.FormatUnknown {
		logger.Warn("unexpected file extension, checking content", "path", path)
	}

	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	progress(cmd, "Extracting: %s\n", path)
	payloads := a.ReadPayloads()
	logger.Debug("payloads read", "path", path, "count", payloads.Len())

	if extractTo != "" {
		n, err := payloads.ExtractTo(extractTo, archive.ExtractOptions{Pretty: cfg.PrettyOptions(), Logger: logger})
		if err != nil {
			return fmt.Errorf("failed to extract parts: %w", err)
		}
		progress(cmd, "Extracted %d files to: %s\n", n, extractTo)
		return nil
	}

	opts := report.Options{
		Path:     path,
		Raw:      rawOutput,
		Format:   cfg.Report.Format,
		Validate: cfg.Report.ValidateOutput,
		KeyFiles: cfg.Report.KeyFiles,
		Pretty:   cfg.PrettyOptions(),
		Logger:   logger,
	}

	var sb strings.Builder
	if cfg.Report.TablesOnly {
		err = report.WriteTablesReport(&sb, payloads, opts)
	} else {
		err = report.WriteStructureReport(&sb, payloads, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if outputPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), sb.String())
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	progress(cmd, "Output written to: %s\n", outputPath)
	return nil
}

// loadConfig reads the config file and layers environment variables and the
// flags named in flagKeys over it.
func loadConfig(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config.Bind(cfg, cmd.Flags(), flagKeys)
}

func newLoader() (*config.Loader, error) {
	if cfgFile != "" {
		return config.NewLoaderWithPath(cfgFile), nil
	}
	return config.NewLoader()
}

// newLogger logs to stderr at the configured level; --verbose and --quiet
// take precedence.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func progress(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}
