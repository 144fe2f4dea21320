// Package build converts a directory of jotdown sources into a mirrored tree
// of HTML files, skipping sources that have not changed since the last run.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gerunddev/jotdown/internal/config"
	"github.com/gerunddev/jotdown/internal/convert"
	"github.com/gerunddev/jotdown/internal/logger"
	"github.com/gerunddev/jotdown/internal/state"
	"github.com/google/uuid"
)

// Builder handles incremental conversion of a source directory
type Builder struct {
	config *config.Config
	state  *state.State
	log    *logger.Logger
	DryRun bool
}

// NewBuilder creates a new builder instance
func NewBuilder(cfg *config.Config, st *state.State) *Builder {
	return &Builder{
		config: cfg,
		state:  st,
		log:    logger.Discard(),
	}
}

// SetLogger sets the logger for build operations
func (b *Builder) SetLogger(l *logger.Logger) {
	b.log = l
}

// Result represents the result of a build run
type Result struct {
	RunID          string
	FilesProcessed int
	Skipped        int
	Pruned         int
	Errors         []error
	StartTime      time.Time
	EndTime        time.Time
}

// String returns a human-readable summary of the build result
func (r *Result) String() string {
	return fmt.Sprintf(
		"Build complete: %d files converted, %d unchanged, %d errors (took %v)",
		r.FilesProcessed,
		r.Skipped,
		len(r.Errors),
		r.EndTime.Sub(r.StartTime).Round(time.Millisecond),
	)
}

// Build converts every changed source. With force set, every source is
// converted. Failures on individual files are collected in the result; the
// returned error is reserved for problems that stop the whole run.
func (b *Builder) Build(force bool) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
	b.log.BuildStarted(result.RunID, b.config.SourceDir, b.config.OutputDir)

	conv, err := convert.NewConverter(convert.OptionsFromConfig(b.config, b.log))
	if err != nil {
		return nil, fmt.Errorf("failed to set up converter: %w", err)
	}

	sources, err := ScanDirectory(b.config.SourceDir, b.config.SourceExt, b.config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}

	for _, src := range sources {
		converted, err := b.buildFile(conv, src, force)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, err)
		case converted:
			result.FilesProcessed++
		default:
			result.Skipped++
		}
	}

	result.Pruned = b.prune(sources)

	result.EndTime = time.Now()
	if !b.DryRun {
		b.state.LastRun = &state.Run{
			ID:        result.RunID,
			StartedAt: result.StartTime,
			Converted: result.FilesProcessed,
			Errors:    len(result.Errors),
		}
	}
	b.log.BuildCompleted(result.RunID, result.FilesProcessed, result.Skipped, len(result.Errors), result.EndTime.Sub(result.StartTime))

	return result, nil
}

// buildFile converts one source when it changed or its output is missing
func (b *Builder) buildFile(conv *convert.Converter, src string, force bool) (bool, error) {
	dest, err := b.Target(src)
	if err != nil {
		return false, err
	}

	if !force {
		changed, err := b.state.HasChanged(src)
		if err != nil {
			b.log.StateError("check "+src, err)
			return false, err
		}
		if !changed && fileExists(dest) {
			b.log.Skipped(src, "unchanged")
			return false, nil
		}
	}

	if b.DryRun {
		b.log.Info("would convert", "source", src, "dest", dest)
		return true, nil
	}

	doc, err := conv.ConvertFile(src, dest)
	if err != nil {
		b.log.ConversionError(src, dest, err)
		return false, err
	}

	if err := b.state.Update(src, dest); err != nil {
		b.log.StateError("update "+src, err)
		return false, fmt.Errorf("failed to record state for %s: %w", src, err)
	}

	b.log.FileConverted(src, dest, len(doc.Fragments))
	return true, nil
}

// prune drops state for sources that no longer exist and removes their outputs
func (b *Builder) prune(sources []string) int {
	present := make(map[string]bool, len(sources))
	for _, src := range sources {
		present[src] = true
	}

	pruned := 0
	for src, fs := range b.state.Files {
		if present[src] || !isWithin(b.config.SourceDir, src) {
			continue
		}
		pruned++
		if b.DryRun {
			b.log.Info("would prune", "source", src, "dest", fs.Output)
			continue
		}
		if fs.Output != "" {
			if err := os.Remove(fs.Output); err != nil && !os.IsNotExist(err) {
				b.log.Warn("failed to remove stale output", "dest", fs.Output, "error", err)
			}
		}
		b.state.Forget(src)
		b.log.Info("pruned", "source", src, "dest", fs.Output)
	}
	return pruned
}

// Target returns the output path for a source file under the output directory
func (b *Builder) Target(src string) (string, error) {
	rel, err := filepath.Rel(b.config.SourceDir, src)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", src, err)
	}
	return convert.OutputPath(filepath.Join(b.config.OutputDir, rel)), nil
}

// Pending lists sources that the next build would convert
func (b *Builder) Pending() ([]string, error) {
	sources, err := ScanDirectory(b.config.SourceDir, b.config.SourceExt, b.config.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, src := range sources {
		changed, err := b.state.HasChanged(src)
		if err != nil {
			return nil, err
		}
		dest, err := b.Target(src)
		if err != nil {
			return nil, err
		}
		if changed || !fileExists(dest) {
			pending = append(pending, src)
		}
	}
	return pending, nil
}

// Watch runs a build immediately and then once per interval until ctx is
// cancelled. report is called after every run.
func (b *Builder) Watch(ctx context.Context, interval time.Duration, report func(*Result, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report(b.Build(false))

	for {
		select {
		case <-ticker.C:
			report(b.Build(false))
		case <-ctx.Done():
			b.log.Info("watch loop stopping")
			return
		}
	}
}

// ScanDirectory scans a directory for files with given extension, skipping
// files whose name or relative path matches an exclude pattern
func ScanDirectory(dir string, ext string, excludePatterns []string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || filepath.Ext(path) != ext {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if excluded(rel, excludePatterns) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
