package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roboco-io/docxinspect/internal/docxtest"
)

func TestWorker_SingleSlot(t *testing.T) {
	release := make(chan struct{})
	w := NewWorker(func(_ context.Context, task Task) string {
		<-release
		return "done " + task.Path
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	id, err := w.Submit(Task{Path: "a.docx"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if id == "" {
		t.Error("expected a task ID")
	}
	if !w.Busy() {
		t.Error("expected worker to be busy")
	}

	if _, err := w.Submit(Task{Path: "b.docx"}); !errors.Is(err, ErrWorkerBusy) {
		t.Errorf("expected ErrWorkerBusy, got %v", err)
	}

	close(release)

	select {
	case res := <-w.Results():
		if res.Task.ID != id {
			t.Errorf("expected task %s, got %s", id, res.Task.ID)
		}
		if res.Output != "done a.docx" {
			t.Errorf("unexpected output %q", res.Output)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
	}

	deadline := time.Now().Add(5 * time.Second)
	for w.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("worker still busy after result was received")
		}
		time.Sleep(time.Millisecond)
	}

	id2, err := w.Submit(Task{Path: "b.docx"})
	if err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}
	if id2 == id {
		t.Error("expected a fresh task ID")
	}
}

func TestWorker_BusyUntilResultReceived(t *testing.T) {
	w := NewWorker(func(context.Context, Task) string { return "ok" }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	if _, err := w.Submit(Task{Path: "a.docx"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// The result sits in the channel until received, and the worker stays
	// busy for that whole time.
	time.Sleep(20 * time.Millisecond)
	if !w.Busy() {
		t.Error("expected busy while the result is undelivered")
	}
	if _, err := w.Submit(Task{Path: "b.docx"}); !errors.Is(err, ErrWorkerBusy) {
		t.Errorf("expected ErrWorkerBusy, got %v", err)
	}
	<-w.Results()
}

func runSession(t *testing.T, input string, opts Options) string {
	t.Helper()
	var out bytes.Buffer
	s := New(strings.NewReader(input), &out, opts)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("session did not finish")
	}
	return out.String()
}

func TestSession_AnalyzeAtEndOfInput(t *testing.T) {
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)

	out := runSession(t, "open "+path+"\nanalyze\n", Options{})

	for _, want := range []string{
		"Welcome! This tool analyzes DOCX files",
		"Selected: " + filepath.Base(path),
		"Analyzing...",
		"DOCX INSPECTOR",
		"TABLE 0 - ANALYSIS",
		"TABLE 0 - RAW XML",
		"TABLE STYLE: TableGrid (Table Grid)",
		"Analysis complete",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	// Tables only is on by default, so key parts are not shown.
	if strings.Contains(out, "\nword/document.xml\n") {
		t.Error("expected no key parts in tables-only mode")
	}
}

func TestSession_OptionsFollowToggles(t *testing.T) {
	path := docxtest.WriteDocument(t, docxtest.Document, docxtest.Styles)

	out := runSession(t, "open '"+path+"'\nraw-xml off\ntables-only off\nanalyze\n", Options{})

	if !strings.Contains(out, "Include raw XML: off") {
		t.Error("expected raw XML toggle confirmation")
	}
	if !strings.Contains(out, "Tables only: off") {
		t.Error("expected tables-only toggle confirmation")
	}
	if strings.Contains(out, "TABLE 0 - RAW XML") {
		t.Error("expected no raw XML section")
	}
	if !strings.Contains(out, "\nword/document.xml\n") {
		t.Error("expected key parts when tables-only is off")
	}
}

func TestSession_AnalyzeMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.docx")

	out := runSession(t, "open "+missing+"\nanalyze\n", Options{})
	if !strings.Contains(out, "Error: File not found: "+missing) {
		t.Errorf("expected inline not-found error, got:\n%s", out)
	}
}

func TestSession_Commands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		not   []string
	}{
		{
			name:  "analyze without file",
			input: "analyze\n",
			want:  []string{"No file selected. Use 'open <path>' first."},
		},
		{
			name:  "open without path",
			input: "open\n",
			want:  []string{"Usage: open <path>"},
		},
		{
			name:  "show before analyze",
			input: "show\n",
			want:  []string{"Nothing to show."},
		},
		{
			name:  "save before analyze",
			input: "save out.txt\n",
			want:  []string{"Nothing to save."},
		},
		{
			name:  "unknown",
			input: "frobnicate\n",
			want:  []string{"Unknown command: frobnicate"},
		},
		{
			name:  "bad toggle",
			input: "raw-xml maybe\n",
			want:  []string{`Expected on or off, got "maybe"`},
		},
		{
			name:  "help",
			input: "help\n",
			want:  []string{"open <path>", "watch [on|off]", "quit, exit"},
		},
		{
			name:  "status",
			input: "status\n",
			want:  []string{"File: (none)", "Tables only: on", "Include raw XML: on", "Format: structured", "Worker: idle"},
		},
		{
			name:  "quit stops reading",
			input: "quit\nfrobnicate\n",
			not:   []string{"Unknown command"},
		},
		{
			name:  "watch before open",
			input: "watch on\n",
			want:  []string{"Watch: on (takes effect after 'open <path>')"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := runSession(t, tc.input, Options{})
			for _, want := range tc.want {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
			for _, not := range tc.not {
				if strings.Contains(out, not) {
					t.Errorf("did not expect %q in output", not)
				}
			}
		})
	}
}

func TestSession_Save(t *testing.T) {
	var out bytes.Buffer
	s := New(strings.NewReader(""), &out, Options{})
	s.last = "report text"

	target := filepath.Join(t.TempDir(), "result.txt")
	s.execute("save " + target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if string(data) != "report text" {
		t.Errorf("unexpected saved content %q", data)
	}
	if !strings.Contains(out.String(), "Saved to: "+target) {
		t.Error("expected save confirmation")
	}
}

func TestSession_WatchToggle(t *testing.T) {
	path := docxtest.WriteDocument(t, docxtest.Document, "")

	var out bytes.Buffer
	s := New(strings.NewReader(""), &out, Options{})
	defer s.stopWatch()

	s.execute("open " + path)
	s.execute("watch on")
	if s.watcher == nil {
		t.Fatal("expected an active watcher")
	}
	if !strings.Contains(out.String(), "Watch: on") {
		t.Error("expected watch confirmation")
	}

	s.execute("watch off")
	if s.watcher != nil {
		t.Error("expected watcher to be closed")
	}
	if s.watching {
		t.Error("expected watching to be off")
	}
}

func TestSession_WatchEvents(t *testing.T) {
	path := docxtest.WriteDocument(t, docxtest.Document, "")

	var out bytes.Buffer
	s := New(strings.NewReader(""), &out, Options{})
	s.path = path

	// Unrelated files and ops are ignored.
	s.handleEvent(fsnotify.Event{Name: filepath.Join(filepath.Dir(path), "other.docx"), Op: fsnotify.Write})
	s.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	if s.worker.Busy() {
		t.Fatal("expected no analysis for ignored events")
	}

	s.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	if !s.worker.Busy() {
		t.Fatal("expected a queued analysis")
	}
	if !strings.Contains(out.String(), "Change detected: "+filepath.Base(path)) {
		t.Error("expected change notice")
	}

	// A second change while busy is dropped.
	before := out.Len()
	s.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
	if out.Len() != before {
		t.Errorf("expected no output while busy, got %q", out.String()[before:])
	}
}

func TestSession_RejectsSecondAnalyze(t *testing.T) {
	path := docxtest.WriteDocument(t, docxtest.Document, "")

	var out bytes.Buffer
	s := New(strings.NewReader(""), &out, Options{})
	s.execute("open " + path)
	s.execute("analyze")
	s.execute("analyze")

	if !strings.Contains(out.String(), "Busy: an analysis is still running") {
		t.Errorf("expected busy message, got:\n%s", out.String())
	}
}

func TestSession_ContextCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	s := New(r, io.Discard, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
