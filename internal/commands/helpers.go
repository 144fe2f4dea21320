package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gerunddev/jotdown/internal/config"
	"github.com/gerunddev/jotdown/internal/logger"
	"github.com/gerunddev/jotdown/internal/styles"
)

// ParseLogFile reads the last N lines from the log file and extracts the
// most recent build summary
func ParseLogFile(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	// Get last N lines
	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	var lastBuild time.Time
	filesConverted := 0

	// Look for most recent "build completed" line
	for i := len(recentLines) - 1; i >= 0; i-- {
		line := recentLines[i]
		if strings.Contains(line, "build completed") {
			// Format: 2025-11-27 14:11:57 INFO build completed run=... files_converted=3
			if len(line) > 19 {
				if t, err := time.ParseInLocation(time.DateTime, line[:19], time.Local); err == nil {
					lastBuild = t
				}
			}

			if idx := strings.Index(line, "files_converted="); idx != -1 {
				_, _ = fmt.Sscanf(line[idx:], "files_converted=%d", &filesConverted) //nolint:errcheck // best effort parsing
			}
			break
		}
	}

	return recentLines, lastBuild, filesConverted
}

// loadConfig loads the configuration or exits with a styled error
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatal("Error loading config", err)
	}
	return cfg
}

// openLogger opens the configured log file, falling back to a discarding
// logger. The returned cleanup is always safe to call.
func openLogger(cfg *config.Config) (*logger.Logger, func()) {
	if cfg.LogFile == "" {
		return logger.Discard(), func() {}
	}
	l, cleanup, err := logger.NewFileLogger(cfg.LogFile, logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.WarningStyle.Render("! Cannot open log file: "+err.Error()))
		return logger.Discard(), func() {}
	}
	return l, cleanup
}

func fatal(msg string, err error) {
	fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ "+msg+": "+err.Error()))
	os.Exit(1)
}

// flagValue returns the value following name in args
func flagValue(args []string, name string) (string, bool) {
	for i, arg := range args {
		if arg == name && i+1 < len(args) {
			return args[i+1], true
		}
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, true
		}
	}
	return "", false
}

func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name {
			return true
		}
	}
	return false
}

// positional returns the arguments that are neither flags nor flag values
func positional(args []string, valueFlags ...string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			out = append(out, arg)
			continue
		}
		for _, f := range valueFlags {
			if arg == f {
				i++
				break
			}
		}
	}
	return out
}
