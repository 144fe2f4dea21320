package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gerunddev/jotdown/internal/build"
	"github.com/gerunddev/jotdown/internal/config"
	"github.com/gerunddev/jotdown/internal/convert"
	"github.com/gerunddev/jotdown/internal/diff"
	"github.com/gerunddev/jotdown/internal/state"
	"github.com/gerunddev/jotdown/internal/styles"
)

// Status displays configuration, pending sources and the last build
func Status() {
	cfg := loadConfig()

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		fatal("Error loading state", err)
	}

	builder := build.NewBuilder(cfg, st)
	pending, err := builder.Pending()
	if err != nil {
		fatal("Error scanning sources", err)
	}

	var recent []string
	if cfg.LogFile != "" {
		recent, _, _ = ParseLogFile(cfg.LogFile, 5)
	}

	fmt.Println(renderStatus(cfg, st, pending, recent))
}

// renderStatus formats the status report
func renderStatus(cfg *config.Config, st *state.State, pending []string, recent []string) string {
	label := styles.DimStyle.Width(10)
	row := func(k, v string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, label.Render(k), v)
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Jotdown Status") + "\n\n")

	settings := []string{
		row("Source", cfg.SourceDir),
		row("Output", cfg.OutputDir),
		row("Mode", cfg.CodeMode),
		row("Style", cfg.HighlightStyle),
		row("Tracked", fmt.Sprintf("%d file(s)", len(st.Files))),
	}
	b.WriteString(styles.TableStyle.Render(strings.Join(settings, "\n")) + "\n\n")

	if run := st.LastRun; run != nil {
		b.WriteString(styles.HeaderStyle.Render("Last build") + "\n")
		summary := fmt.Sprintf("%s  %d converted", run.StartedAt.Format(time.DateTime), run.Converted)
		if run.Errors > 0 {
			summary += ", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", run.Errors))
		}
		b.WriteString("  " + summary + "\n")
		b.WriteString("  " + styles.DimStyle.Render("run "+run.ID) + "\n\n")
	} else {
		b.WriteString(styles.DimStyle.Render("No build recorded yet") + "\n\n")
	}

	if len(pending) == 0 {
		b.WriteString(styles.SuccessStyle.Render("✓ Output is up to date") + "\n")
	} else {
		b.WriteString(styles.WarningStyle.Render(fmt.Sprintf("%d source(s) pending", len(pending))) + "\n")
		for _, src := range pending {
			rel, err := filepath.Rel(cfg.SourceDir, src)
			if err != nil {
				rel = src
			}
			b.WriteString("  " + styles.HighlightStyle.Render("•") + " " + rel + "\n")
		}
	}

	if len(recent) > 0 {
		b.WriteString("\n" + styles.HeaderStyle.Render("Recent log") + "\n")
		for _, line := range recent {
			b.WriteString("  " + styles.DimStyle.Render(line) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Diff previews how rebuilding a source would change its output
func Diff(args []string) {
	files := positional(args)
	if len(files) != 1 {
		fatal("Usage: jotdown diff <source> [--plain]", fmt.Errorf("expected one source, got %d", len(files)))
	}
	src, err := filepath.Abs(files[0])
	if err != nil {
		fatal("Invalid path", err)
	}

	cfg := loadConfig()
	log, cleanup := openLogger(cfg)
	defer cleanup()

	conv, err := convert.NewConverter(convert.OptionsFromConfig(cfg, log))
	if err != nil {
		fatal("Error setting up converter", err)
	}

	// Sources inside the tree diff against their mirrored output
	dest := convert.OutputPath(src)
	if rel, err := filepath.Rel(cfg.SourceDir, src); err == nil && !strings.HasPrefix(rel, "..") {
		if dest, err = build.NewBuilder(cfg, state.NewState()).Target(src); err != nil {
			fatal("Invalid path", err)
		}
	}

	format := diff.FormatTerminal
	if hasFlag(args, "--plain") {
		format = diff.FormatPlain
	}

	out, err := diff.Generate(conv, src, dest, format)
	if err != nil {
		fatal("Diff failed", err)
	}
	if out == "" {
		fmt.Println(styles.SuccessStyle.Render("✓ No changes"))
		return
	}
	fmt.Print(out)
}

// Init writes the configuration file, filling in defaults for missing fields
func Init() {
	cfg, err := config.Load()
	if err != nil {
		fatal("Error loading config", err)
	}
	if err := cfg.Save(); err != nil {
		fatal("Error writing config", err)
	}
	fmt.Println(styles.SuccessStyle.Render("✓ Wrote " + config.ConfigPath()))
}
