// Package config manages application configuration.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roboco-io/docxinspect/internal/ooxml"
)

// Config represents the application configuration.
type Config struct {
	Report      ReportConfig      `yaml:"report" mapstructure:"report"`
	Pretty      PrettyConfig      `yaml:"pretty" mapstructure:"pretty"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Interactive InteractiveConfig `yaml:"interactive" mapstructure:"interactive"`
}

// ReportConfig controls report content.
type ReportConfig struct {
	TablesOnly     bool     `yaml:"tables_only" mapstructure:"tables_only"`
	IncludeRawXML  bool     `yaml:"include_raw_xml" mapstructure:"include_raw_xml"`
	Format         string   `yaml:"format" mapstructure:"format"` // structured, yaml, raw-markup
	KeyFiles       []string `yaml:"key_files" mapstructure:"key_files"`
	ValidateOutput bool     `yaml:"validate_output" mapstructure:"validate_output"`
}

// PrettyConfig controls indented markup output.
type PrettyConfig struct {
	Indent        string `yaml:"indent" mapstructure:"indent"`
	FallbackChars int    `yaml:"fallback_chars" mapstructure:"fallback_chars"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// InteractiveConfig controls the interactive shell.
type InteractiveConfig struct {
	Watch bool `yaml:"watch" mapstructure:"watch"`
}

// Report body formats accepted in report.format.
var ReportFormats = []string{"structured", "yaml", "raw-markup"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			TablesOnly:    false,
			IncludeRawXML: true,
			Format:        "structured",
			KeyFiles: []string{
				"word/document.xml",
				"word/styles.xml",
				"word/numbering.xml",
				"word/settings.xml",
				"word/_rels/document.xml.rels",
			},
		},
		Pretty: PrettyConfig{
			Indent:        ooxml.DefaultIndent,
			FallbackChars: ooxml.DefaultFallbackChars,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// PrettyOptions returns the markup formatting options.
func (c *Config) PrettyOptions() ooxml.PrettyOptions {
	return ooxml.PrettyOptions{
		Indent:        c.Pretty.Indent,
		FallbackChars: c.Pretty.FallbackChars,
	}
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	return ParseLevel(c.Log.Level)
}

// ParseLevel parses a level name (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s (supported: debug, info, warn, error)", s)
	}
	return level, nil
}

// Validate checks values that cannot be caught by the YAML decoder.
func (c *Config) Validate() error {
	if !contains(ReportFormats, c.Report.Format) {
		return fmt.Errorf("invalid report.format: %s (supported: %s)", c.Report.Format, strings.Join(ReportFormats, ", "))
	}
	if c.Pretty.FallbackChars < 0 {
		return fmt.Errorf("pretty.fallback_chars must not be negative: %d", c.Pretty.FallbackChars)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"report.tables_only",
	"report.include_raw_xml",
	"report.format",
	"report.key_files",
	"report.validate_output",
	"pretty.indent",
	"pretty.fallback_chars",
	"log.level",
	"interactive.watch",
}

// Set updates one key from its string form. report.key_files takes a
// comma-separated list.
func (c *Config) Set(key, value string) error {
	switch key {
	case "report.tables_only":
		return setBool(&c.Report.TablesOnly, key, value)
	case "report.include_raw_xml":
		return setBool(&c.Report.IncludeRawXML, key, value)
	case "report.validate_output":
		return setBool(&c.Report.ValidateOutput, key, value)
	case "interactive.watch":
		return setBool(&c.Interactive.Watch, key, value)

	case "report.format":
		if !contains(ReportFormats, value) {
			return fmt.Errorf("invalid report format: %s (supported: %s)", value, strings.Join(ReportFormats, ", "))
		}
		c.Report.Format = value

	case "report.key_files":
		var files []string
		for _, f := range strings.Split(value, ",") {
			if f = strings.TrimSpace(f); f != "" {
				files = append(files, f)
			}
		}
		c.Report.KeyFiles = files

	case "pretty.indent":
		c.Pretty.Indent = value

	case "pretty.fallback_chars":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for %s: %s", key, value)
		}
		c.Pretty.FallbackChars = n

	case "log.level":
		if _, err := ParseLevel(value); err != nil {
			return err
		}
		c.Log.Level = strings.ToLower(value)

	default:
		return fmt.Errorf("unknown config key: %s\nsupported keys: %s", key, strings.Join(Keys, ", "))
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %s (expected true or false)", key, value)
	}
	*dst = b
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
