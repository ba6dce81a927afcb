// Package shell is the interactive front end: a line-oriented session that
// selects an archive, runs the inspection report on a background worker and
// prints, saves or re-runs the result.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/roboco-io/docxinspect/internal/config"
	"github.com/roboco-io/docxinspect/internal/report"
)

const (
	prompt = "docxinspect> "

	reasonCommand = "command"
	reasonWatch   = "watch"
)

// Welcome is printed when a session starts.
var Welcome = report.Separator + `
                        DOCX Table Inspector
` + report.Separator + `

Welcome! This tool analyzes DOCX files and extracts table structure information.

Instructions:
1. Type "open <path>" to select a DOCX file
2. Type "analyze" to inspect the file
3. Type "show" to print the last result or "save <file>" to export it

The output includes:
- Table properties (width, borders, layout)
- Column grid definitions (widths in twips and pixels)
- Row-by-row cell analysis (merging, styling, content)
- Table styles from styles.xml

Type "help" for all commands.
`

const helpText = `Commands:
  open <path>           select a DOCX file
  analyze               inspect the selected file
  tables-only [on|off]  show only tables and table styles
  raw-xml [on|off]      include each table's raw XML
  show                  print the last result
  save <file>           write the last result to a file
  watch [on|off]        re-analyze when the selected file changes
  status                show the current settings
  help                  show this help
  quit, exit            leave the session`

// Options configures a Session.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Path preselects an archive.
	Path string
}

// Session is one interactive front-end session. All state is owned by the
// goroutine running Run; the worker only returns report text.
type Session struct {
	in     io.Reader
	out    io.Writer
	cfg    *config.Config
	logger *slog.Logger
	worker *Worker

	path       string
	tablesOnly bool
	rawXML     bool
	last       string
	status     string

	watching bool
	watcher  *fsnotify.Watcher
}

// New creates a session reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		in:         in,
		out:        out,
		cfg:        cfg,
		logger:     logger.With("component", "shell"),
		path:       opts.Path,
		tablesOnly: true,
		rawXML:     cfg.Report.IncludeRawXML,
		watching:   cfg.Interactive.Watch,
		status:     "Ready",
	}
	s.worker = NewWorker(s.inspect, logger)
	return s
}

// inspect runs on the worker goroutine and sees only the task.
func (s *Session) inspect(_ context.Context, task Task) string {
	return report.Inspect(task.Options)
}

// Run reads and executes commands until quit, end of input or ctx is
// cancelled. At end of input it waits for a running analysis to be printed.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.worker.Start(ctx)
	defer s.stopWatch()

	if s.watching {
		if err := s.startWatch(); err != nil {
			s.printf("Watch disabled: %v\n", err)
		}
	}

	s.printf("%s\n", Welcome)
	if s.path != "" {
		s.printf("Selected: %s\n", filepath.Base(s.path))
	}
	s.printf("%s", prompt)

	lines := readLines(ctx, s.in)
	eof := false

	for {
		var events <-chan fsnotify.Event
		var watchErrs <-chan error
		if s.watcher != nil {
			events = s.watcher.Events
			watchErrs = s.watcher.Errors
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				lines = nil
				eof = true
				if !s.worker.Busy() {
					return nil
				}
				continue
			}
			if quit := s.execute(line); quit {
				return nil
			}
			s.printf("%s", prompt)

		case res := <-s.worker.Results():
			s.showResult(res)
			if eof {
				return nil
			}
			s.printf("%s", prompt)

		case ev := <-events:
			s.handleEvent(ev)

		case err := <-watchErrs:
			s.logger.Warn("watch error", "error", err)
		}
	}
}

// readLines feeds input lines to a channel that is closed at end of input.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// execute runs one command line and reports whether the session should end.
func (s *Session) execute(line string) bool {
	cmd, arg := splitCommand(line)
	switch cmd {
	case "":
	case "open":
		s.open(arg)
	case "analyze":
		s.analyze(reasonCommand)
	case "tables-only":
		s.toggle(&s.tablesOnly, "Tables only", arg)
	case "raw-xml":
		s.toggle(&s.rawXML, "Include raw XML", arg)
	case "show":
		if s.last == "" {
			s.printf("Nothing to show. Use 'analyze' first.\n")
			return false
		}
		s.printf("%s\n", s.last)
	case "save":
		s.save(arg)
	case "watch":
		s.watch(arg)
	case "status":
		s.printStatus()
	case "help":
		s.printf("%s\n", helpText)
	case "quit", "exit":
		return true
	default:
		s.printf("Unknown command: %s (type 'help')\n", cmd)
	}
	return false
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), unquote(strings.TrimSpace(arg))
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func (s *Session) open(path string) {
	if path == "" {
		s.printf("Usage: open <path>\n")
		return
	}
	s.path = path
	s.status = fmt.Sprintf("Selected: %s", filepath.Base(path))
	s.printf("%s\n", s.status)

	if s.watching {
		s.stopWatch()
		if err := s.startWatch(); err != nil {
			s.watching = false
			s.printf("Watch disabled: %v\n", err)
		}
	}
}

func (s *Session) analyze(reason string) {
	if s.path == "" {
		s.printf("No file selected. Use 'open <path>' first.\n")
		return
	}

	id, err := s.worker.Submit(Task{Path: s.path, Reason: reason, Options: s.reportOptions(s.path)})
	if errors.Is(err, ErrWorkerBusy) {
		s.printf("Busy: an analysis is still running, try again when it finishes.\n")
		return
	}
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}

	s.status = "Analyzing..."
	s.logger.Debug("analysis submitted", "task_id", id, "reason", reason)
	s.printf("%s\n", s.status)
}

func (s *Session) showResult(res Result) {
	s.last = res.Output
	s.status = "Analysis complete"
	s.printf("%s\n%s\n", res.Output, s.status)
}

func (s *Session) toggle(dst *bool, label, arg string) {
	switch strings.ToLower(arg) {
	case "":
		*dst = !*dst
	case "on", "true", "yes", "1":
		*dst = true
	case "off", "false", "no", "0":
		*dst = false
	default:
		s.printf("Expected on or off, got %q\n", arg)
		return
	}
	s.printf("%s: %s\n", label, onOff(*dst))
}

func (s *Session) save(path string) {
	if path == "" {
		s.printf("Usage: save <file>\n")
		return
	}
	if strings.TrimSpace(s.last) == "" {
		s.printf("Nothing to save.\n")
		return
	}
	if err := os.WriteFile(path, []byte(s.last), 0644); err != nil {
		s.printf("Error: failed to write %s: %v\n", path, err)
		return
	}
	s.status = fmt.Sprintf("Saved to: %s", path)
	s.printf("%s\n", s.status)
}

func (s *Session) watch(arg string) {
	want := !s.watching
	switch strings.ToLower(arg) {
	case "":
	case "on":
		want = true
	case "off":
		want = false
	default:
		s.printf("Expected on or off, got %q\n", arg)
		return
	}

	if want == s.watching {
		s.printf("Watch: %s\n", onOff(s.watching))
		return
	}

	if !want {
		s.stopWatch()
		s.watching = false
		s.printf("Watch: off\n")
		return
	}

	s.watching = true
	if s.path == "" {
		s.printf("Watch: on (takes effect after 'open <path>')\n")
		return
	}
	if err := s.startWatch(); err != nil {
		s.watching = false
		s.printf("Watch disabled: %v\n", err)
		return
	}
	s.printf("Watch: on\n")
}

// startWatch watches the directory holding the selected archive. Editors
// usually replace the file on save, so the file itself is not watched.
func (s *Session) startWatch() error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s.watcher = watcher
	s.logger.Debug("watching", "dir", dir)
	return nil
}

func (s *Session) stopWatch() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Close(); err != nil {
		s.logger.Warn("failed to close watcher", "error", err)
	}
	s.watcher = nil
}

func (s *Session) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	if s.worker.Busy() {
		s.logger.Debug("change ignored while busy", "path", ev.Name, "op", ev.Op.String())
		return
	}
	s.printf("\nChange detected: %s\n", filepath.Base(s.path))
	s.analyze(reasonWatch)
}

func (s *Session) printStatus() {
	path := s.path
	if path == "" {
		path = "(none)"
	}
	busy := "idle"
	if s.worker.Busy() {
		busy = "busy"
	}
	s.printf("File: %s\nTables only: %s\nInclude raw XML: %s\nFormat: %s\nWatch: %s\nWorker: %s\nStatus: %s\n",
		path, onOff(s.tablesOnly), onOff(s.rawXML), s.cfg.Report.Format, onOff(s.watching), busy, s.status)
}

func (s *Session) reportOptions(path string) report.Options {
	return report.Options{
		Path:          path,
		TablesOnly:    s.tablesOnly,
		IncludeRawXML: s.rawXML,
		Format:        s.cfg.Report.Format,
		Validate:      s.cfg.Report.ValidateOutput,
		KeyFiles:      s.cfg.Report.KeyFiles,
		Pretty:        s.cfg.PrettyOptions(),
		Logger:        s.logger,
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
