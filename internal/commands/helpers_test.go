package commands

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gerunddev/jotdown/internal/build"
	"github.com/gerunddev/jotdown/internal/config"
	"github.com/gerunddev/jotdown/internal/state"
	"github.com/gerunddev/jotdown/internal/tui"
)

func TestParseLogFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "jotdown.log")

	content := strings.Join([]string{
		"2025-11-27 14:11:50 INFO build started run=a source_dir=/src output_dir=/out",
		"2025-11-27 14:11:51 INFO build completed run=a files_converted=2 skipped=0 errors=0 duration=4ms",
		"2025-11-27 14:11:56 INFO build started run=b source_dir=/src output_dir=/out",
		"2025-11-27 14:11:57 INFO build completed run=b files_converted=7 skipped=1 errors=0 duration=9ms",
		"",
	}, "\n")
	if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	lines, lastBuild, converted := ParseLogFile(logPath, 3)

	if len(lines) != 3 {
		t.Errorf("Expected 3 recent lines, got %d: %q", len(lines), lines)
	}
	want := time.Date(2025, 11, 27, 14, 11, 57, 0, time.Local)
	if !lastBuild.Equal(want) {
		t.Errorf("lastBuild = %v, want %v", lastBuild, want)
	}
	if converted != 7 {
		t.Errorf("files converted = %d, want 7", converted)
	}
}

func TestParseLogFileMissing(t *testing.T) {
	lines, lastBuild, converted := ParseLogFile(filepath.Join(t.TempDir(), "missing.log"), 10)

	if len(lines) != 1 || lines[0] != "Unable to read log file" {
		t.Errorf("unexpected lines: %q", lines)
	}
	if !lastBuild.IsZero() || converted != 0 {
		t.Errorf("expected zero values, got %v and %d", lastBuild, converted)
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		args  []string
		want  string
		found bool
	}{
		{[]string{"--interval", "10s"}, "10s", true},
		{[]string{"--interval=2m"}, "2m", true},
		{[]string{"--interval"}, "", false},
		{[]string{"--force"}, "", false},
	}

	for _, tt := range tests {
		got, found := flagValue(tt.args, "--interval")
		if got != tt.want || found != tt.found {
			t.Errorf("flagValue(%q) = %q, %v; want %q, %v", tt.args, got, found, tt.want, tt.found)
		}
	}
}

func TestPositional(t *testing.T) {
	got := positional([]string{"--mode", "fenced", "in.jd", "--standalone", "-"}, "--mode")
	want := []string{"in.jd", "-"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("positional() = %q, want %q", got, want)
	}
}

func TestParseConvertArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    convertArgs
		wantErr bool
	}{
		{
			name: "default output",
			args: []string{"notes/a.jd"},
			want: convertArgs{in: "notes/a.jd", out: "notes/a.html"},
		},
		{
			name: "stdin to stdout",
			args: []string{"-"},
			want: convertArgs{in: "-", out: "-"},
		},
		{
			name: "explicit output and flags",
			args: []string{"--mode", "fenced", "a.jd", "b.html", "--style=dracula", "--standalone"},
			want: convertArgs{in: "a.jd", out: "b.html", mode: "fenced", style: "dracula", standalone: true},
		},
		{name: "no input", args: nil, wantErr: true},
		{name: "too many", args: []string{"a", "b", "c"}, wantErr: true},
		{name: "bad mode", args: []string{"a.jd", "--mode", "inline"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConvertArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseConvertArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConvertArgsApply(t *testing.T) {
	cfg := config.DefaultConfig()
	convertArgs{mode: "fenced", style: "none", standalone: true}.apply(cfg)

	if cfg.CodeMode != "fenced" || cfg.HighlightStyle != "none" || !cfg.Standalone {
		t.Errorf("overrides not applied: %+v", cfg)
	}

	cfg = config.DefaultConfig()
	convertArgs{}.apply(cfg)
	if cfg.CodeMode != "paired" || cfg.Standalone {
		t.Errorf("empty overrides changed config: %+v", cfg)
	}
}

func TestRenderStatus(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SourceDir = "/notes"

	st := state.NewState()
	st.LastRun = &state.Run{
		ID:        "run-1",
		StartedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Converted: 4,
		Errors:    1,
	}

	out := renderStatus(cfg, st, []string{"/notes/sub/a.jd"}, []string{"recent line"})
	for _, want := range []string{"/notes", "4 converted", "1 error(s)", "run run-1", "1 source(s) pending", filepath.Join("sub", "a.jd"), "recent line"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}

	out = renderStatus(cfg, state.NewState(), nil, nil)
	for _, want := range []string{"No build recorded yet", "Output is up to date"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestStartBuildSignalsAfterRunReturns(t *testing.T) {
	release := make(chan struct{})
	var sent []tea.Msg
	var mu sync.Mutex

	done := startBuild(func() (*build.Result, error) {
		<-release
		return &build.Result{FilesProcessed: 2}, nil
	}, func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, msg)
	})

	select {
	case <-done:
		t.Fatal("done fired while the build was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	out := <-done
	if out.err != nil || out.result == nil || out.result.FilesProcessed != 2 {
		t.Errorf("unexpected outcome: %+v", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(sent) != 1 {
		t.Fatalf("expected one message sent to the TUI, got %d", len(sent))
	}
	if msg, ok := sent[0].(tui.BuildMsg); !ok || msg.Result.FilesProcessed != 2 {
		t.Errorf("unexpected TUI message: %#v", sent[0])
	}
}

func TestFinishBuild(t *testing.T) {
	ok := buildOutcome{result: &build.Result{}}
	tests := []struct {
		name      string
		dryRun    bool
		out       buildOutcome
		wantErr   bool
		wantSaved bool
	}{
		{name: "completed build saves state", out: ok, wantSaved: true},
		{name: "dry run leaves state alone", dryRun: true, out: ok},
		{name: "failed build reports error", out: buildOutcome{err: errors.New("scan failed")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statePath := filepath.Join(t.TempDir(), "state.json")
			st := state.NewState()
			st.Files["a.jd"] = &state.FileState{MTime: 1, Hash: "sha256:x"}

			err := finishBuild(st, statePath, tt.dryRun, tt.out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("finishBuild() error = %v, wantErr %v", err, tt.wantErr)
			}

			_, statErr := os.Stat(statePath)
			if saved := statErr == nil; saved != tt.wantSaved {
				t.Errorf("state saved = %v, want %v", saved, tt.wantSaved)
			}
		})
	}
}
