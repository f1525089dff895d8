package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vburojevic/rtw/internal/config"
)

// Version information, set via ldflags at build time
var (
	Version = "dev"
	Commit  = "unknown"
)

// CLI is the top-level command structure
type CLI struct {
	Format  string `help:"Output format (auto, ndjson, text)" default:"${config_format}" enum:"auto,ndjson,text"`
	Quiet   bool   `short:"q" help:"Suppress informational output"`
	Verbose bool   `help:"Enable verbose debug output"`

	Tail       TailCmd       `cmd:"" help:"Tail a remote file over HTTP byte ranges"`
	Watch      WatchCmd      `cmd:"" help:"Tail and run commands when new lines match patterns"`
	Probe      ProbeCmd      `cmd:"" help:"Probe the remote file size with a single HEAD request"`
	UI         UICmd         `cmd:"" name:"ui" help:"Interactive terminal UI for the live tail"`
	Schema     SchemaCmd     `cmd:"" help:"Output JSON Schema for NDJSON event types"`
	Config     ConfigCmd     `cmd:"" help:"Manage configuration"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completions"`
	Update     UpdateCmd     `cmd:"" help:"Show how to upgrade rtw"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

// Globals carries shared state into command Run methods.
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
}

// NewGlobalsWithConfig builds Globals from parsed flags with config fallbacks.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  c.Format,
		Quiet:   c.Quiet || cfg.Quiet,
		Verbose: c.Verbose || cfg.Verbose || cfg.Defaults.Debug,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}
	g.Format = resolveFormat(g.Format)
	return g
}

// resolveFormat maps "auto" onto ndjson for pipes and text for terminals, so
// agents get machine-readable output without asking and humans get a plain
// tail.
func resolveFormat(format string) string {
	if format != "auto" && format != "" {
		return format
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return "text"
	}
	return "ndjson"
}

// Debug prints a debug line when verbose mode is on.
func (g *Globals) Debug(format string, args ...interface{}) {
	if g == nil || !g.Verbose {
		return
	}
	fmt.Fprintf(g.Stderr, "[debug] "+format+"\n", args...)
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		enc := json.NewEncoder(globals.Stdout)
		return enc.Encode(map[string]string{
			"type":    "version",
			"version": Version,
			"commit":  Commit,
		})
	}
	fmt.Fprintf(globals.Stdout, "rtw version %s (%s)\n", Version, Commit)
	return nil
}
