package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/jotdown/internal/commands"
	"github.com/gerunddev/jotdown/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "convert":
		commands.Convert(os.Args[2:])
	case "build":
		commands.Build(os.Args[2:])
	case "watch":
		commands.Watch(os.Args[2:])
	case "diff":
		commands.Diff(os.Args[2:])
	case "status":
		commands.Status()
	case "init":
		commands.Init()
	case "version", "-v", "--version":
		fmt.Printf("jotdown v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`jotdown - Convert jotdown notes to HTML

Usage:
  jotdown <command> [options]

Commands:
  convert     Convert one file (<in> [out], "-" for stdin/stdout)
  build       Convert changed sources into the output directory
  watch       Rebuild on an interval until interrupted
  diff        Preview how rebuilding a source changes its output
  status      Display build state and pending sources
  init        Write the configuration file with defaults
  version     Show version information
  help        Show this help message

Examples:
  jotdown convert notes.jd
  jotdown convert - - --mode fenced < notes.jd
  jotdown build
  jotdown build --force
  jotdown build --dry-run
  jotdown watch --interval 10s
  jotdown diff ~/jotdown/todo.jd --plain
  jotdown status

Configuration:
  Config file: %s
  State file:  %s
`, config.ConfigPath(), config.StateFilePath())
	fmt.Print(usage)
}
