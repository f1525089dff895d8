package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vburojevic/rtw/internal/config"
)

// ConfigCmd manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"1" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show config file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate a sample config file"`
}

// ConfigShowCmd shows the current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":    "config",
			"format":  cfg.Format,
			"quiet":   cfg.Quiet,
			"verbose": cfg.Verbose,
			"defaults": map[string]interface{}{
				"url":              cfg.Defaults.URL,
				"load_bytes":       cfg.Defaults.LoadBytes,
				"poll_interval_ms": cfg.Defaults.PollIntervalMs,
				"paused":           cfg.Defaults.Paused,
				"debug":            cfg.Defaults.Debug,
				"heartbeat":        cfg.Defaults.Heartbeat,
			},
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintf(globals.Stdout, "  format: %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  quiet: %v\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %v\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout, "  Defaults:")
	fmt.Fprintf(globals.Stdout, "    url: %s\n", cfg.Defaults.URL)
	fmt.Fprintf(globals.Stdout, "    load_bytes: %d\n", cfg.Defaults.LoadBytes)
	fmt.Fprintf(globals.Stdout, "    poll_interval_ms: %d\n", cfg.Defaults.PollIntervalMs)
	fmt.Fprintf(globals.Stdout, "    paused: %v\n", cfg.Defaults.Paused)
	fmt.Fprintf(globals.Stdout, "    heartbeat: %s\n", cfg.Defaults.Heartbeat)
	return nil
}

// ConfigPathCmd shows where configuration is loaded from
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type": "config_path",
			"path": path,
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "Searched: /etc/rtw/rtw.yaml, $XDG_CONFIG_HOME/rtw/rtw.yaml, ~/.rtw.yaml, ./rtw.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}
	return nil
}

// ConfigGenerateCmd prints a sample configuration file
type ConfigGenerateCmd struct{}

const sampleConfig = `# rtw configuration file
# Place at ~/.rtw.yaml or ./rtw.yaml

# Output format: auto, ndjson, or text
format: ndjson

# Suppress informational output
quiet: false

# Verbose debug output
verbose: false

defaults:
  # Remote file to tail when no URL argument is given
  url: ""

  # Tail window and per-request byte budget
  load_bytes: 30720

  # Poll interval in milliseconds
  poll_interval_ms: 1000

  # Start paused
  paused: false

  # Heartbeat interval for NDJSON output ("" disables)
  heartbeat: ""
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
