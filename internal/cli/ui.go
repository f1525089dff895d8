package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vburojevic/rtw/internal/tail"
	"github.com/vburojevic/rtw/internal/tui"
)

// UICmd launches an interactive TUI for viewing the live tail
type UICmd struct {
	URL       string `arg:"" optional:"" help:"Remote file URL (falls back to config defaults.url)"`
	LoadBytes int64  `help:"Tail window and per-request byte budget (default: config or 30720)"`
	Interval  string `help:"Poll interval, e.g. 500ms or 2s (default: config or 1s)"`
	Paused    bool   `help:"Start paused"`
}

// Run executes the UI command
func (c *UICmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	url := c.URL
	if url == "" {
		url = globals.Config.Defaults.URL
	}
	if url == "" {
		return fmt.Errorf("no URL given and no defaults.url configured")
	}

	loadBytes := c.LoadBytes
	if loadBytes == 0 {
		loadBytes = globals.Config.Defaults.LoadBytes
	}

	interval := tail.DefaultPollInterval
	if c.Interval != "" {
		var err error
		interval, err = time.ParseDuration(c.Interval)
		if err != nil {
			return fmt.Errorf("invalid poll interval: %w", err)
		}
	} else if ms := globals.Config.Defaults.PollIntervalMs; ms > 0 {
		interval = time.Duration(ms) * time.Millisecond
	}

	sink := tail.NewChannelSink(256)
	poller, err := tail.New(tail.Options{
		URL:          url,
		LoadBytes:    loadBytes,
		PollInterval: interval,
		Paused:       c.Paused,
		Sink:         sink,
	})
	if err != nil {
		return err
	}

	globals.Debug("starting tail for TUI: %s", url)
	poller.Start(ctx)
	defer poller.Stop()

	model := tui.New(url, poller, sink.Data(), sink.Notices())

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Handle context cancellation
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
