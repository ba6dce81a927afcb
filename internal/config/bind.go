package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: DOCXINSPECT_REPORT_FORMAT
// overrides report.format.
const EnvPrefix = "DOCXINSPECT"

// Bind layers environment variables and command-line flags over cfg and
// returns the merged configuration. flagKeys maps config keys to flag names;
// a flag only wins when it was set explicitly. Precedence is flag, then
// environment, then cfg.
func Bind(cfg *Config, flags *pflag.FlagSet, flagKeys map[string]string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range cfg.settings() {
		v.SetDefault(key, value)
	}

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				return nil, fmt.Errorf("unknown flag for %s: --%s", key, name)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// settings flattens cfg into viper keys.
func (c *Config) settings() map[string]any {
	return map[string]any{
		"report.tables_only":     c.Report.TablesOnly,
		"report.include_raw_xml": c.Report.IncludeRawXML,
		"report.format":          c.Report.Format,
		"report.key_files":       c.Report.KeyFiles,
		"report.validate_output": c.Report.ValidateOutput,
		"pretty.indent":          c.Pretty.Indent,
		"pretty.fallback_chars":  c.Pretty.FallbackChars,
		"log.level":              c.Log.Level,
		"interactive.watch":      c.Interactive.Watch,
	}
}
