package commands

import (
	"fmt"
	"os"

	"github.com/gerunddev/jotdown/internal/config"
	"github.com/gerunddev/jotdown/internal/convert"
	"github.com/gerunddev/jotdown/internal/markup"
	"github.com/gerunddev/jotdown/internal/styles"
)

// convertArgs holds the parsed arguments of the convert command
type convertArgs struct {
	in, out    string
	mode       string
	style      string
	standalone bool
}

func parseConvertArgs(args []string) (convertArgs, error) {
	var ca convertArgs
	files := positional(args, "--mode", "--style")
	switch len(files) {
	case 1:
		ca.in = files[0]
		if ca.in == "-" {
			ca.out = "-"
		} else {
			ca.out = convert.OutputPath(ca.in)
		}
	case 2:
		ca.in, ca.out = files[0], files[1]
	default:
		return ca, fmt.Errorf("expected <in> [out], got %d argument(s)", len(files))
	}

	ca.mode, _ = flagValue(args, "--mode")
	if _, ok := markup.ParseCodeMode(ca.mode); !ok {
		return ca, fmt.Errorf("invalid code mode %q (use paired or fenced)", ca.mode)
	}
	ca.style, _ = flagValue(args, "--style")
	ca.standalone = hasFlag(args, "--standalone")
	return ca, nil
}

// apply layers command line overrides onto the loaded configuration
func (ca convertArgs) apply(cfg *config.Config) {
	if ca.mode != "" {
		cfg.CodeMode = ca.mode
	}
	if ca.style != "" {
		cfg.HighlightStyle = ca.style
	}
	if ca.standalone {
		cfg.Standalone = true
	}
}

// Convert converts a single file. Output defaults to the .html sibling of
// the input; "-" reads stdin or writes stdout.
func Convert(args []string) {
	ca, err := parseConvertArgs(args)
	if err != nil {
		fatal("Usage: jotdown convert <in> [out] [--mode paired|fenced] [--style name] [--standalone]", err)
	}

	cfg := loadConfig()
	ca.apply(cfg)

	log, cleanup := openLogger(cfg)
	defer cleanup()

	conv, err := convert.NewConverter(convert.OptionsFromConfig(cfg, log))
	if err != nil {
		fatal("Error setting up converter", err)
	}

	doc, err := conv.ConvertFile(ca.in, ca.out)
	if err != nil {
		log.ConversionError(ca.in, ca.out, err)
		fatal("Conversion failed", err)
	}
	log.FileConverted(ca.in, ca.out, len(doc.Fragments))

	if ca.out != "-" {
		fmt.Fprintln(os.Stderr, styles.SuccessStyle.Render(fmt.Sprintf("✓ %s → %s", ca.in, ca.out)))
	}
}
