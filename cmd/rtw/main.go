package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/rtw/internal/cli"
	"github.com/vburojevic/rtw/internal/config"
)

const quickStart = `rtw - remote file tailing over HTTP byte ranges

Quick start:
  rtw probe https://host/app.log               Check the remote size
  rtw tail https://host/app.log                Follow appended content
  rtw tail https://host/app.log --format ndjson | jq .

For help:
  rtw --help                                   All commands and flags
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format": cfg.Format,
	}

	ctx := kong.Parse(&c,
		kong.Name("rtw"),
		kong.Description("RemoteTailWatcher: tail remote append-only files over HTTP byte ranges\n\nAI agents: use --format ndjson for machine-readable output"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
