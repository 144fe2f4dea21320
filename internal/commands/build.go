package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gerunddev/jotdown/internal/build"
	"github.com/gerunddev/jotdown/internal/config"
	"github.com/gerunddev/jotdown/internal/state"
	"github.com/gerunddev/jotdown/internal/styles"
	"github.com/gerunddev/jotdown/internal/tui"
)

// Build performs a one-shot incremental build
func Build(args []string) {
	force := hasFlag(args, "--force")
	dryRun := hasFlag(args, "--dry-run")

	title := "Jotdown Build"
	if dryRun {
		title += " (DRY RUN)"
	}
	fmt.Println(styles.TitleStyle.Render(title))
	fmt.Println()

	cfg := loadConfig()

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		fatal("Error loading state", err)
	}

	fmt.Printf("%s → %s\n", styles.DimStyle.Render(cfg.SourceDir), styles.DimStyle.Render(cfg.OutputDir))
	if dryRun {
		fmt.Println(styles.DimStyle.Render("(dry run - no files will be written)"))
	}
	fmt.Println()

	log, cleanup := openLogger(cfg)
	defer cleanup()
	log.ConfigLoaded(cfg.SourceDir, cfg.OutputDir, cfg.CodeMode)

	builder := build.NewBuilder(cfg, st)
	builder.DryRun = dryRun
	builder.SetLogger(log)

	p := tea.NewProgram(tui.InitBuildModel("Converting sources..."), tea.WithInput(os.Stdin))

	done := startBuild(func() (*build.Result, error) { return builder.Build(force) }, p.Send)

	if _, err := p.Run(); err != nil {
		fatal("Error", err)
	}

	// Quitting the spinner does not stop the build; state is only saved
	// once the builder is done with it.
	out := <-done
	if err := finishBuild(st, config.StateFilePath(), dryRun, out); err != nil {
		fatal("Build failed", err)
	}
}

// buildOutcome is what a background build hands back to the command
type buildOutcome struct {
	result *build.Result
	err    error
}

// startBuild runs the build in the background, reporting to the TUI through
// send. The returned channel yields once the build has returned.
func startBuild(run func() (*build.Result, error), send func(tea.Msg)) <-chan buildOutcome {
	done := make(chan buildOutcome, 1)
	go func() {
		result, err := run()
		send(tui.BuildMsg{Result: toTUIResult(result), Err: err})
		done <- buildOutcome{result: result, err: err}
	}()
	return done
}

// finishBuild saves state after a completed build. A run-stopping error is
// returned as is and leaves the state file untouched, as does a dry run.
func finishBuild(st *state.State, path string, dryRun bool, out buildOutcome) error {
	if out.err != nil {
		return out.err
	}
	if dryRun {
		return nil
	}
	if err := st.Save(path); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Watch rebuilds on an interval until interrupted
func Watch(args []string) {
	cfg := loadConfig()

	if v, ok := flagValue(args, "--interval"); ok {
		interval, err := time.ParseDuration(v)
		if err != nil || interval <= 0 {
			fatal("Invalid interval", fmt.Errorf("%q", v))
		}
		cfg.Interval = interval
	}

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		fatal("Error loading state", err)
	}

	log, cleanup := openLogger(cfg)
	defer cleanup()
	log.Info("watch started", "pid", os.Getpid(), "interval", cfg.Interval)

	builder := build.NewBuilder(cfg, st)
	builder.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(styles.TitleStyle.Render("Jotdown Watch"))
	fmt.Printf("%s → %s every %v\n", styles.DimStyle.Render(cfg.SourceDir), styles.DimStyle.Render(cfg.OutputDir), cfg.Interval)
	fmt.Println(styles.HelpStyle.Render("Press ctrl+c to stop"))
	fmt.Println()

	builder.Watch(ctx, cfg.Interval, func(result *build.Result, err error) {
		stamp := styles.DimStyle.Render(time.Now().Format(time.TimeOnly))
		if err != nil {
			log.Error("build failed", "error", err)
			fmt.Printf("%s %s\n", stamp, styles.ErrorStyle.Render("✗ "+err.Error()))
			return
		}

		if err := st.Save(config.StateFilePath()); err != nil {
			log.StateError("save", err)
		}

		if result.FilesProcessed == 0 && len(result.Errors) == 0 && result.Pruned == 0 {
			return
		}
		fmt.Printf("%s %s\n", stamp, styles.SuccessStyle.Render(result.String()))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", styles.ErrorStyle.Render(e.Error()))
		}
	})

	log.Info("watch stopped")
	fmt.Println(styles.DimStyle.Render("Stopped"))
}

func toTUIResult(r *build.Result) *tui.BuildResult {
	if r == nil {
		return nil
	}
	return &tui.BuildResult{
		FilesProcessed: r.FilesProcessed,
		Skipped:        r.Skipped,
		Errors:         r.Errors,
		Duration:       r.EndTime.Sub(r.StartTime),
	}
}
