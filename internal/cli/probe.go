package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/vburojevic/rtw/internal/domain"
	"github.com/vburojevic/rtw/internal/output"
	"github.com/vburojevic/rtw/internal/tail"
)

// ProbeCmd issues one HEAD request to establish the remote size without
// consuming a range fetch.
type ProbeCmd struct {
	URL     string `arg:"" optional:"" help:"Remote file URL (falls back to config defaults.url)"`
	Timeout string `default:"10s" help:"Request timeout"`
}

// Run executes the probe command
func (c *ProbeCmd) Run(globals *Globals) error {
	url := c.URL
	if url == "" {
		url = globals.Config.Defaults.URL
	}
	if url == "" {
		return outputErrorCommon(globals, "URL_REQUIRED", "no URL given and no defaults.url configured", "pass a URL or set defaults.url in rtw.yaml")
	}

	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_TIMEOUT", fmt.Sprintf("invalid timeout: %s", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	size, _, err := tail.ProbeSize(ctx, tail.NewHTTPTransport(), url)
	if err != nil {
		return outputErrorCommon(globals, "PROBE_FAILED", err.Error(), "the server must answer HEAD with Content-Length")
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).Write(domain.NewProbe(url, size))
	}

	table := tablewriter.NewTable(globals.Stdout)
	table.Header("URL", "Size (bytes)")
	table.Append(url, fmt.Sprintf("%d", size))
	return table.Render()
}
