package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roboco-io/docxinspect/internal/archive"
	"github.com/roboco-io/docxinspect/internal/config"
	"github.com/roboco-io/docxinspect/internal/docxtest"
)

// useTempConfig points the config loader at a fresh file for this test.
func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.ConfigPathEnv, path)
	return path
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between executions.
func resetFlags() {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, c := range []*cobra.Command{rootCmd, interactiveCmd, configInitCmd} {
		reset(c.Flags())
		reset(c.PersistentFlags())
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSetVersion(t *testing.T) {
	oldVersion := version
	oldRootVersion := rootCmd.Version
	defer func() {
		version = oldVersion
		rootCmd.Version = oldRootVersion
	}()

	SetVersion("1.2.3")
	if version != "1.2.3" {
		t.Errorf("expected version '1.2.3', got '%s'", version)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "docxinspect [file]" {
		t.Errorf("expected Use 'docxinspect [file]', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	flags := []string{"tables-only", "output", "raw", "extract-to", "no-interactive", "no-gui", "format", "validate"}
	for _, flag := range flags {
		if rootCmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag '%s' to exist", flag)
		}
	}

	for _, flag := range []string{"config", "verbose", "quiet"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag '%s' to exist", flag)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("expected Use 'version', got '%s'", versionCmd.Use)
	}

	useTempConfig(t)
	stdout, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if stdout != "docxinspect "+version+"\n" {
		t.Errorf("unexpected version output %q", stdout)
	}
}

func TestConfigCommand(t *testing.T) {
	if configCmd.Use != "config" {
		t.Errorf("expected Use 'config', got '%s'", configCmd.Use)
	}

	subcommands := []string{"show", "init", "set", "path"}
	for _, name := range subcommands {
		found := false
		for _, cmd := range configCmd.Commands() {
			if cmd.Use == name || cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand '%s' to exist", name)
		}
	}
}

func TestEnvName(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"report.format", "DOCXINSPECT_REPORT_FORMAT"},
		{"log.level", "DOCXINSPECT_LOG_LEVEL"},
		{"interactive.watch", "DOCXINSPECT_INTERACTIVE_WATCH"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			if got := envName(tc.key); got != tc.expected {
				t.Errorf("envName(%q) = %q, want %q", tc.key, got, tc.expected)
			}
		})
	}
}

func TestRun_StructureReport(t *testing.T) {
	useTempConfig(t)
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)

	stdout, stderr, err := execute(t, "", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, want := range []string{"DOCX STRUCTURE INSPECTOR", "FILES IN DOCX", "Found 1 table(s)", "Table 0 Summary"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if !strings.Contains(stderr, "Extracting: "+path) {
		t.Errorf("expected progress on stderr, got %q", stderr)
	}
}

func TestRun_TablesOnly(t *testing.T) {
	useTempConfig(t)
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)

	tests := []struct {
		name string
		args []string
		want []string
		not  []string
	}{
		{
			name: "analysis",
			args: []string{path, "--tables-only"},
			want: []string{"DOCX TABLE INSPECTOR", "Tables found: 1", "TABLE 0 - ANALYSIS", `"total_grid_width_twips": 6000`, "Style: TableGrid (Table Grid)"},
		},
		{
			name: "raw",
			args: []string{path, "--tables-only", "--raw"},
			want: []string{"TABLE 0 - RAW XML"},
			not:  []string{"TABLE 0 - ANALYSIS"},
		},
		{
			name: "yaml",
			args: []string{path, "--tables-only", "--format", "yaml"},
			want: []string{"total_grid_width_twips: 6000"},
		},
		{
			name: "raw markup",
			args: []string{path, "--tables-only", "--format", "raw-markup"},
			want: []string{"TABLE 0 - ANALYSIS\n" + strings.Repeat("=", 80) + "\n<?xml version=\"1.0\" ?>\n<w:tbl"},
		},
		{
			name: "validated",
			args: []string{path, "--tables-only", "--validate"},
			want: []string{"TABLE 0 - ANALYSIS"},
			not:  []string{"Validation error"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tc.args...)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			for _, want := range tc.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("expected %q in output", want)
				}
			}
			for _, not := range tc.not {
				if strings.Contains(stdout, not) {
					t.Errorf("did not expect %q in output", not)
				}
			}
		})
	}
}

func TestRun_EnvOverride(t *testing.T) {
	useTempConfig(t)
	t.Setenv("DOCXINSPECT_REPORT_TABLES_ONLY", "true")
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)

	stdout, _, err := execute(t, "", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(stdout, "DOCX TABLE INSPECTOR") {
		t.Error("expected tables-only report from environment override")
	}
}

func TestRun_OutputFile(t *testing.T) {
	useTempConfig(t)
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)
	target := filepath.Join(t.TempDir(), "report.txt")

	stdout, stderr, err := execute(t, "", path, "--tables-only", "-o", target)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "Output written to: "+target) {
		t.Errorf("expected output notice, got %q", stderr)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "DOCX TABLE INSPECTOR") {
		t.Error("expected report in output file")
	}
}

func TestRun_ExtractTo(t *testing.T) {
	useTempConfig(t)
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)
	dir := filepath.Join(t.TempDir(), "parts")

	stdout, stderr, err := execute(t, "", path, "--extract-to", dir)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected no report when extracting, got %q", stdout)
	}
	if !strings.Contains(stderr, "Extracted 5 files to: "+dir) {
		t.Errorf("expected extract notice, got %q", stderr)
	}

	data, err := os.ReadFile(filepath.Join(dir, "word", "document.xml"))
	if err != nil {
		t.Fatalf("expected extracted document: %v", err)
	}
	if !strings.HasPrefix(string(data), `<?xml version="1.0" ?>`) {
		t.Error("expected pretty-printed document")
	}
}

func TestRun_Quiet(t *testing.T) {
	useTempConfig(t)
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)

	_, stderr, err := execute(t, "", path, "-q")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stderr != "" {
		t.Errorf("expected no stderr output, got %q", stderr)
	}
}

func TestRun_Errors(t *testing.T) {
	useTempConfig(t)
	missing := filepath.Join(t.TempDir(), "missing.docx")

	_, _, err := execute(t, "", missing)
	if !archive.IsKind(err, archive.KindMissing) {
		t.Errorf("expected missing-file error, got %v", err)
	}
	if err != nil && err.Error() != "File not found: "+missing {
		t.Errorf("unexpected message %q", err.Error())
	}

	notZip := filepath.Join(t.TempDir(), "plain.docx")
	if err := os.WriteFile(notZip, []byte("not a zip archive"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, "", notZip); !archive.IsKind(err, archive.KindCorrupt) {
		t.Errorf("expected corrupt-archive error, got %v", err)
	}

	if _, _, err := execute(t, "", "--no-interactive"); err == nil {
		t.Error("expected error without a file in non-interactive mode")
	}

	path := docxtest.WriteDocument(t, docxtest.Document, "")
	if _, _, err := execute(t, "", path, "--format", "xml"); err == nil || !strings.Contains(err.Error(), "invalid report.format") {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestRun_NoArgsStartsSession(t *testing.T) {
	useTempConfig(t)

	stdout, _, err := execute(t, "help\nquit\n")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(stdout, "Welcome! This tool analyzes DOCX files") {
		t.Error("expected welcome banner")
	}
	if !strings.Contains(stdout, "save <file>") {
		t.Error("expected help output")
	}
}

func TestInteractiveCommand(t *testing.T) {
	useTempConfig(t)
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)

	stdout, _, err := execute(t, "analyze\n", "interactive", path)
	if err != nil {
		t.Fatalf("interactive failed: %v", err)
	}
	for _, want := range []string{"Selected: " + filepath.Base(path), "DOCX INSPECTOR", "Analysis complete"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestSchemaCommand(t *testing.T) {
	useTempConfig(t)

	stdout, _, err := execute(t, "", "schema")
	if err != nil {
		t.Fatalf("schema failed: %v", err)
	}

	var schema map[string]any
	if err := json.Unmarshal([]byte(stdout), &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if _, ok := schema["$schema"]; !ok {
		t.Error("expected $schema keyword")
	}
}

func TestConfigLifecycle(t *testing.T) {
	cfgPath := useTempConfig(t)

	stdout, _, err := execute(t, "", "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(stdout) != cfgPath {
		t.Errorf("expected %s, got %q", cfgPath, stdout)
	}

	stdout, _, err = execute(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(stdout, "(using defaults)") {
		t.Error("expected defaults notice before init")
	}

	if _, _, err := execute(t, "", "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, _, err := execute(t, "", "config", "init"); err == nil {
		t.Error("expected error when config already exists")
	}
	if _, _, err := execute(t, "", "config", "init", "--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}

	if _, _, err := execute(t, "", "config", "set", "report.format", "yaml"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if _, _, err := execute(t, "", "config", "set", "unknown.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}

	stdout, _, err = execute(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"Config file: " + cfgPath, "format: yaml", "DOCXINSPECT_REPORT_FORMAT"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in config show output", want)
		}
	}
}
