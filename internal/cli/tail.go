package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/vburojevic/rtw/internal/domain"
	"github.com/vburojevic/rtw/internal/filter"
	"github.com/vburojevic/rtw/internal/output"
	"github.com/vburojevic/rtw/internal/session"
	"github.com/vburojevic/rtw/internal/tail"
	"github.com/vburojevic/rtw/internal/tmux"
)

// TailCmd tails a remote append-only file over HTTP byte ranges
type TailCmd struct {
	URL       string `arg:"" optional:"" help:"Remote file URL (falls back to config defaults.url)"`
	LoadBytes int64  `help:"Tail window and per-request byte budget (default: config or 30720)"`
	Interval  string `help:"Poll interval, e.g. 500ms or 2s (default: config or 1s)"`
	Paused    bool   `help:"Start paused; poll cycles are skipped until resumed"`
	Retry     string `default:"5s" help:"Auto-resume delay after a fetch error (0 disables)"`

	Pattern string `short:"p" help:"Regex pattern to filter appended lines"`
	Exclude string `short:"x" help:"Regex pattern to exclude from appended lines"`
	Dedupe  bool   `help:"Collapse consecutive duplicate lines"`

	Heartbeat   string `help:"Heartbeat interval for NDJSON output, e.g. 30s (0 disables)"`
	MaxDuration string `help:"Stop after this duration, e.g. 10m"`
	MaxBytes    int64  `help:"Stop after this many appended bytes"`

	Tmux      bool   `help:"Mirror output into a tmux session"`
	Session   string `help:"Custom tmux session name (default: rtw-<host>)"`
	OutputDir string `help:"Write appended content to per-generation files in this directory"`
}

// Run executes the tail command
func (c *TailCmd) Run(globals *Globals) error {
	if err := validateFlags(globals, c.Tmux, c.OutputDir); err != nil {
		return err
	}

	url := c.URL
	if url == "" {
		url = globals.Config.Defaults.URL
	}
	if url == "" {
		return outputErrorCommon(globals, "URL_REQUIRED", "no URL given and no defaults.url configured", "pass a URL or set defaults.url in rtw.yaml")
	}

	loadBytes := c.LoadBytes
	if loadBytes == 0 {
		loadBytes = globals.Config.Defaults.LoadBytes
	}
	if loadBytes <= 0 {
		return outputErrorCommon(globals, "INVALID_LOAD_BYTES", "load bytes must be a positive integer")
	}

	interval, err := c.resolveInterval(globals)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_INTERVAL", err.Error())
	}

	retry, err := parseOptionalDuration(c.Retry)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_DURATION", fmt.Sprintf("invalid retry delay: %s", err))
	}

	lineFilter, err := filter.NewLineFilter(c.Pattern, c.Exclude)
	if err != nil {
		code := "INVALID_PATTERN"
		if strings.Contains(err.Error(), "exclude") {
			code = "INVALID_EXCLUDE_PATTERN"
		}
		return outputErrorCommon(globals, code, err.Error())
	}

	heartbeat, err := c.resolveHeartbeat(globals)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_HEARTBEAT", err.Error())
	}

	maxDuration, err := parseOptionalDuration(c.MaxDuration)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_DURATION", fmt.Sprintf("invalid max duration: %s", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	tracker := session.NewTracker(url)
	sink := tail.NewChannelSink(256)
	logger := newAgentLogger(globals, url, tracker.Current)

	poller, err := tail.New(tail.Options{
		URL:          url,
		LoadBytes:    loadBytes,
		PollInterval: interval,
		Paused:       c.Paused,
		Sink:         sink,
		Logger:       logger.Sugared(),
	})
	if err != nil {
		return outputErrorCommon(globals, "TAIL_FAILED", err.Error())
	}

	// Determine output destination
	var outputWriter io.Writer = globals.Stdout
	var tmuxMgr *tmux.Manager

	if c.Tmux && tmux.IsTmuxAvailable() {
		sessionName := c.Session
		if sessionName == "" {
			sessionName = tmux.GenerateSessionName(url)
		}

		cfg := &tmux.Config{
			SessionName: sessionName,
			URL:         url,
			Detached:    true,
		}
		tmuxMgr, err = tmux.NewManager(cfg)
		if err == nil {
			if err := tmuxMgr.GetOrCreateSession(); err == nil {
				outputWriter = tmux.NewWriter(tmuxMgr)
				tmuxMgr.ClearPaneWithBanner(fmt.Sprintf("Tailing: %s", url))

				if globals.Format == "ndjson" {
					fmt.Fprintf(globals.Stdout, `{"type":"tmux","session":"%s","attach":"%s"}`+"\n",
						sessionName, tmuxMgr.AttachCommand())
				} else {
					fmt.Fprintf(globals.Stdout, "Tmux session: %s\n", sessionName)
					fmt.Fprintf(globals.Stdout, "Attach with: %s\n", tmuxMgr.AttachCommand())
				}
			}
		}
	}
	if tmuxMgr != nil {
		defer tmuxMgr.Cleanup()
	}

	// Per-generation file rotation
	var rot *rotation
	var rotWriter *bufio.Writer
	if c.OutputDir != "" {
		if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
			return outputErrorCommon(globals, "OUTPUT_DIR_FAILED", fmt.Sprintf("failed to create output directory: %s", err))
		}
		rot = newRotation(func(generation int) (string, error) {
			return filepath.Join(c.OutputDir, fmt.Sprintf("session-%03d.log", generation)), nil
		})
		defer rot.Close()
	}

	ndjsonWriter := output.NewNDJSONWriter(globals.Stdout)
	textWriter := output.NewTextWriter(outputWriter)

	if globals.Format == "ndjson" {
		ndjsonWriter.WriteReady(domain.NewReady(url, loadBytes, interval.Milliseconds()))
	} else if !globals.Quiet {
		fmt.Fprintf(globals.Stderr, "Tailing %s (window %d bytes, every %s)\n", url, loadBytes, interval)
		fmt.Fprintln(globals.Stderr, "Press Ctrl+C to stop")
	}

	streamFilter := filter.NewStreamFilter(lineFilter)
	var dedupe *filter.Dedupe
	if c.Dedupe {
		dedupe = filter.NewDedupe()
	}
	// Dedupe works on whole lines, so a partial line at the end of an
	// append is carried until its newline arrives.
	var dedupeCarry string

	var heartbeatCh <-chan time.Time
	if heartbeat > 0 && globals.Format == "ndjson" {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		heartbeatCh = ticker.C
	}

	var deadlineCh <-chan time.Time
	if maxDuration > 0 {
		timer := time.NewTimer(maxDuration)
		defer timer.Stop()
		deadlineCh = timer.C
	}

	started := time.Now()
	var totalBytes, bytesSinceLast int64
	var appendsSinceLast int

	poller.Start(ctx)
	defer poller.Stop()

	finish := func() error {
		if end := tracker.FinalSummary(); end != nil && globals.Format == "ndjson" {
			ndjsonWriter.Write(end)
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return finish()

		case <-deadlineCh:
			if globals.Format == "ndjson" {
				ndjsonWriter.Write(domain.NewCutoff("max_duration", int64(maxDuration.Seconds()), int64(time.Since(started).Seconds())))
			} else if !globals.Quiet {
				textWriter.WriteNotice("stopping: max duration %s reached", maxDuration)
			}
			return finish()

		case <-heartbeatCh:
			snap := poller.Snapshot()
			ndjsonWriter.WriteHeartbeat(&domain.Heartbeat{
				Type:             "heartbeat",
				SchemaVersion:    domain.SchemaVersion,
				Session:          tracker.Current(),
				Timestamp:        time.Now().UTC().Format(time.RFC3339),
				UptimeSeconds:    int(time.Since(started).Seconds()),
				BytesSinceLast:   bytesSinceLast,
				AppendsSinceLast: appendsSinceLast,
				RemoteSize:       snap.KnownSize,
			})
			bytesSinceLast = 0
			appendsSinceLast = 0

		case data := <-sink.Data():
			if change := tracker.RecordAppend(len(data.Content), data.Size); change != nil && change.Start != nil {
				c.emitSessionStart(globals, ndjsonWriter, textWriter, change.Start)
				rotWriter = c.openRotation(globals, rot, tracker.Current())
			}

			if rotWriter != nil {
				rotWriter.Write(data.Content)
				rotWriter.Flush()
			}

			content := streamFilter.Feed(string(data.Content))
			if dedupe != nil {
				content, dedupeCarry = dedupeLines(dedupe, dedupeCarry+content)
			}
			if content != "" {
				evt := domain.NewData(tracker.Current(), []byte(content), data.Size)
				if globals.Format == "ndjson" {
					ndjsonWriter.WriteData(evt)
				} else {
					textWriter.WriteData(evt)
				}
			}

			totalBytes += int64(len(data.Content))
			bytesSinceLast += int64(len(data.Content))
			appendsSinceLast++
			if c.MaxBytes > 0 && totalBytes >= c.MaxBytes {
				if globals.Format == "ndjson" {
					ndjsonWriter.Write(domain.NewCutoff("max_bytes", c.MaxBytes, totalBytes))
				} else if !globals.Quiet {
					textWriter.WriteNotice("stopping: max bytes %d reached", c.MaxBytes)
				}
				return finish()
			}

		case n := <-sink.Notices():
			switch notice := n.(type) {
			case tail.FetchError:
				tracker.RecordError()
				if globals.Format == "ndjson" {
					ndjsonWriter.Write(domain.NewFetchError(tracker.Current(), notice.Cause, true))
				} else if !globals.Quiet {
					textWriter.WriteNotice("fetch error: %v (paused)", notice.Cause)
				}
				if retry > 0 {
					time.AfterFunc(retry, poller.Resume)
				}

			case tail.MalformedResponse:
				tracker.RecordError()
				if globals.Format == "ndjson" {
					ndjsonWriter.Write(domain.NewMalformed(tracker.Current(), notice.Reason, notice.Status, notice.Header))
				} else if !globals.Quiet {
					textWriter.WriteNotice("malformed response: %s (status %d)", notice.Reason, notice.Status)
				}

			case tail.Truncated:
				if globals.Format == "ndjson" {
					ndjsonWriter.Write(domain.NewTruncated(tracker.Current(), notice.OldSize, notice.NewSize))
				} else if !globals.Quiet {
					textWriter.WriteNotice("remote truncated (old %d, new %d)", notice.OldSize, notice.NewSize)
				}

				change := tracker.RecordTruncation(notice.NewSize)
				streamFilter.Flush()
				if dedupe != nil {
					dedupe.Reset()
					dedupeCarry = ""
				}
				if change != nil {
					if change.End != nil && globals.Format == "ndjson" {
						ndjsonWriter.Write(change.End)
					}
					if change.Start != nil {
						c.emitSessionStart(globals, ndjsonWriter, textWriter, change.Start)
						if tmuxMgr != nil {
							var prev *domain.SessionSummary
							if change.End != nil {
								prev = &change.End.Summary
							}
							tmuxMgr.WriteSessionBanner(change.Start.Session, url, prev)
						}
					}
				}
				rotWriter = c.openRotation(globals, rot, tracker.Current())
			}
		}
	}
}

func (c *TailCmd) resolveInterval(globals *Globals) (time.Duration, error) {
	if c.Interval != "" {
		d, err := time.ParseDuration(c.Interval)
		if err != nil {
			return 0, fmt.Errorf("invalid poll interval: %w", err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("poll interval must be positive")
		}
		return d, nil
	}
	ms := globals.Config.Defaults.PollIntervalMs
	if ms <= 0 {
		return tail.DefaultPollInterval, nil
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (c *TailCmd) resolveHeartbeat(globals *Globals) (time.Duration, error) {
	spec := c.Heartbeat
	if spec == "" {
		spec = globals.Config.Defaults.Heartbeat
	}
	d, err := parseOptionalDuration(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid heartbeat interval: %w", err)
	}
	return d, nil
}

func (c *TailCmd) emitSessionStart(globals *Globals, nd *output.NDJSONWriter, tw *output.TextWriter, start *domain.SessionStart) {
	if globals.Format == "ndjson" {
		nd.Write(start)
	} else if !globals.Quiet && start.Alert != "" {
		tw.WriteSessionBoundary(start)
	}
}

func (c *TailCmd) openRotation(globals *Globals, rot *rotation, generation int) *bufio.Writer {
	if rot == nil {
		return nil
	}
	w, _, path, err := rot.Open(generation)
	if err != nil {
		globals.Debug("rotation failed: %v", err)
		return nil
	}
	globals.Debug("writing session %d to %s", generation, path)
	return w
}

// parseOptionalDuration treats "" and "0" as disabled.
func parseOptionalDuration(spec string) (time.Duration, error) {
	if spec == "" || spec == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(spec)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return d, nil
}

// dedupeLines collapses consecutive duplicate lines in the completed part of
// chunk and returns the collapsed text plus the trailing partial line.
func dedupeLines(d *filter.Dedupe, chunk string) (out string, carry string) {
	idx := strings.LastIndexByte(chunk, '\n')
	if idx < 0 {
		return "", chunk
	}
	complete := chunk[:idx+1]
	carry = chunk[idx+1:]

	var b strings.Builder
	for _, line := range strings.SplitAfter(complete, "\n") {
		if line == "" {
			continue
		}
		if d.Check(strings.TrimSuffix(line, "\n")).Emit {
			b.WriteString(line)
		}
	}
	return b.String(), carry
}
