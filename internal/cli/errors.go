package cli

import (
	"errors"
	"fmt"

	"github.com/vburojevic/rtw/internal/output"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so AI agents always get machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s", code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.Stderr, " (hint: %s)", hint[0])
		}
		fmt.Fprintln(globals.Stderr)
	}
	return errors.New(message)
}

// validateFlags centralizes common flag combinations to keep behavior consistent.
func validateFlags(globals *Globals, tmux bool, outputDir string) error {
	if globals != nil && globals.Format == "text" && globals.Quiet {
		return outputErrorCommon(globals, "INVALID_FLAGS", "--quiet is only supported with ndjson output", "switch to --format ndjson or drop --quiet")
	}
	if tmux && outputDir != "" {
		return outputErrorCommon(globals, "INVALID_FLAGS", "--tmux cannot be combined with --output-dir", "pick one destination")
	}
	return nil
}
