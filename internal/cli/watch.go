package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/vburojevic/rtw/internal/domain"
	"github.com/vburojevic/rtw/internal/filter"
	"github.com/vburojevic/rtw/internal/output"
	"github.com/vburojevic/rtw/internal/session"
	"github.com/vburojevic/rtw/internal/tail"
)

// WatchCmd tails a remote file and triggers commands on specific patterns
type WatchCmd struct {
	URL       string `arg:"" optional:"" help:"Remote file URL (falls back to config defaults.url)"`
	LoadBytes int64  `help:"Tail window and per-request byte budget (default: config or 30720)"`
	Interval  string `help:"Poll interval, e.g. 500ms or 2s (default: config or 1s)"`
	Retry     string `default:"5s" help:"Auto-resume delay after a fetch error (0 disables)"`

	Pattern string `short:"p" help:"Regex pattern to filter appended lines"`
	Exclude string `short:"x" help:"Regex pattern to exclude from appended lines"`

	OnPattern   []string `help:"Pattern:command pairs (e.g., 'panic:notify.sh') - can be repeated"`
	OnTruncate  string   `help:"Command to run when the remote file is truncated"`
	OnError     string   `help:"Command to run when a fetch error pauses polling"`
	Cooldown    string   `default:"5s" help:"Minimum time between trigger executions"`
	EchoMatches bool     `default:"true" negatable:"" help:"Also write matching lines to stdout"`
}

// triggerConfig holds parsed trigger configuration
type triggerConfig struct {
	pattern *regexp.Regexp
	command string
}

// Run executes the watch command
func (c *WatchCmd) Run(globals *Globals) error {
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
		return outputErrorCommon(globals, "URL_REQUIRED", "no URL given and no defaults.url configured", "pass a URL or set defaults.url in rtw.yaml")
	}

	loadBytes := c.LoadBytes
	if loadBytes == 0 {
		loadBytes = globals.Config.Defaults.LoadBytes
	}

	cooldown, err := time.ParseDuration(c.Cooldown)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_COOLDOWN", fmt.Sprintf("invalid cooldown duration: %s", err))
	}

	retry, err := parseOptionalDuration(c.Retry)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_DURATION", fmt.Sprintf("invalid retry delay: %s", err))
	}

	interval := tail.DefaultPollInterval
	if c.Interval != "" {
		interval, err = time.ParseDuration(c.Interval)
		if err != nil {
			return outputErrorCommon(globals, "INVALID_INTERVAL", fmt.Sprintf("invalid poll interval: %s", err))
		}
	} else if ms := globals.Config.Defaults.PollIntervalMs; ms > 0 {
		interval = time.Duration(ms) * time.Millisecond
	}

	// Parse pattern triggers
	var triggers []triggerConfig
	for _, pt := range c.OnPattern {
		parts := strings.SplitN(pt, ":", 2)
		if len(parts) != 2 {
			return outputErrorCommon(globals, "INVALID_TRIGGER", fmt.Sprintf("invalid pattern:command format: %s", pt))
		}
		re, err := regexp.Compile(parts[0])
		if err != nil {
			return outputErrorCommon(globals, "INVALID_TRIGGER_PATTERN", fmt.Sprintf("invalid trigger pattern: %s", err))
		}
		triggers = append(triggers, triggerConfig{pattern: re, command: parts[1]})
	}

	lineFilter, err := newLineFilterWithCodes(globals, c.Pattern, c.Exclude)
	if err != nil {
		return err
	}

	tracker := session.NewTracker(url)
	sink := tail.NewChannelSink(256)
	logger := newAgentLogger(globals, url, tracker.Current)

	poller, err := tail.New(tail.Options{
		URL:          url,
		LoadBytes:    loadBytes,
		PollInterval: interval,
		Sink:         sink,
		Logger:       logger.Sugared(),
	})
	if err != nil {
		return outputErrorCommon(globals, "TAIL_FAILED", err.Error())
	}

	// Output watch info
	if !globals.Quiet {
		if globals.Format == "ndjson" {
			fmt.Fprintf(globals.Stdout, `{"type":"info","message":"Watching %s","mode":"trigger"}`+"\n", url)
		} else {
			fmt.Fprintf(globals.Stderr, "Watching %s\n", url)
			for _, t := range triggers {
				fmt.Fprintf(globals.Stderr, "On pattern '%s': %s\n", t.pattern.String(), t.command)
			}
			if c.OnTruncate != "" {
				fmt.Fprintf(globals.Stderr, "On truncate: %s\n", c.OnTruncate)
			}
			if c.OnError != "" {
				fmt.Fprintf(globals.Stderr, "On error: %s\n", c.OnError)
			}
			fmt.Fprintf(globals.Stderr, "Cooldown: %s\n", c.Cooldown)
			fmt.Fprintln(globals.Stderr, "Press Ctrl+C to stop")
		}
	}

	ndjsonWriter := output.NewNDJSONWriter(globals.Stdout)
	textWriter := output.NewTextWriter(globals.Stdout)

	// Track last trigger times for cooldown
	lastTruncateTrigger := time.Time{}
	lastErrorTrigger := time.Time{}
	lastPatternTriggers := make(map[int]time.Time)

	// Triggers match whole lines, so a partial line at the end of an
	// append is carried until its newline arrives.
	var carry string

	poller.Start(ctx)
	defer poller.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case data := <-sink.Data():
			tracker.RecordAppend(len(data.Content), data.Size)
			now := time.Now()

			chunk := carry + string(data.Content)
			idx := strings.LastIndexByte(chunk, '\n')
			if idx < 0 {
				carry = chunk
				continue
			}
			carry = chunk[idx+1:]

			for _, line := range strings.Split(chunk[:idx], "\n") {
				if !lineFilter.MatchLine(line) {
					continue
				}
				if c.EchoMatches {
					if globals.Format == "ndjson" {
						ndjsonWriter.WriteData(domain.NewData(tracker.Current(), []byte(line+"\n"), data.Size))
					} else {
						textWriter.WriteData(&domain.Data{Content: line + "\n"})
					}
				}
				for i, t := range triggers {
					if t.pattern.MatchString(line) {
						if now.Sub(lastPatternTriggers[i]) >= cooldown {
							c.runTrigger(globals, "pattern:"+t.pattern.String(), t.command, line)
							lastPatternTriggers[i] = now
						}
					}
				}
			}

		case n := <-sink.Notices():
			now := time.Now()
			switch notice := n.(type) {
			case tail.Truncated:
				tracker.RecordTruncation(notice.NewSize)
				carry = ""
				if globals.Format == "ndjson" {
					ndjsonWriter.Write(domain.NewTruncated(tracker.Current(), notice.OldSize, notice.NewSize))
				} else if !globals.Quiet {
					textWriter.WriteNotice("remote truncated (old %d, new %d)", notice.OldSize, notice.NewSize)
				}
				if c.OnTruncate != "" && now.Sub(lastTruncateTrigger) >= cooldown {
					c.runTrigger(globals, "truncate", c.OnTruncate, "")
					lastTruncateTrigger = now
				}

			case tail.FetchError:
				tracker.RecordError()
				if !globals.Quiet {
					if globals.Format == "ndjson" {
						ndjsonWriter.Write(domain.NewFetchError(tracker.Current(), notice.Cause, true))
					} else {
						fmt.Fprintf(globals.Stderr, "Warning: %s\n", notice.Cause.Error())
					}
				}
				if c.OnError != "" && now.Sub(lastErrorTrigger) >= cooldown {
					c.runTrigger(globals, "error", c.OnError, notice.Cause.Error())
					lastErrorTrigger = now
				}
				if retry > 0 {
					time.AfterFunc(retry, poller.Resume)
				}

			case tail.MalformedResponse:
				tracker.RecordError()
				if !globals.Quiet {
					if globals.Format == "ndjson" {
						ndjsonWriter.Write(domain.NewMalformed(tracker.Current(), notice.Reason, notice.Status, notice.Header))
					} else {
						fmt.Fprintf(globals.Stderr, "Warning: malformed response (%s)\n", notice.Reason)
					}
				}
			}
		}
	}
}

// runTrigger executes a trigger command
func (c *WatchCmd) runTrigger(globals *Globals, triggerType, command, line string) {
	// Output trigger notification
	if globals.Format == "ndjson" {
		fmt.Fprintf(globals.Stdout, `{"type":"trigger","trigger":"%s","command":"%s","line":"%s"}`+"\n",
			triggerType, command, escapeJSON(line))
	} else if !globals.Quiet {
		fmt.Fprintf(globals.Stderr, "[TRIGGER:%s] Running: %s\n", triggerType, command)
	}

	// Set environment variables for the command
	cmd := exec.Command("sh", "-c", command)
	cmd.Env = append(os.Environ(),
		"RTW_TRIGGER="+triggerType,
		"RTW_LINE="+line,
		"RTW_TIMESTAMP="+time.Now().Format(time.RFC3339),
	)

	// Run command in background (don't block tail processing)
	go func() {
		if err := cmd.Run(); err != nil {
			if globals.Format == "ndjson" {
				fmt.Fprintf(globals.Stdout, `{"type":"trigger_error","command":"%s","error":"%s"}`+"\n",
					command, escapeJSON(err.Error()))
			} else if !globals.Quiet {
				fmt.Fprintf(globals.Stderr, "[TRIGGER ERROR] %s: %s\n", command, err.Error())
			}
		}
	}()
}

// newLineFilterWithCodes compiles the include/exclude pair, mapping compile
// failures onto the machine-readable error codes.
func newLineFilterWithCodes(globals *Globals, pattern, exclude string) (*filter.LineFilter, error) {
	f, err := filter.NewLineFilter(pattern, exclude)
	if err != nil {
		code := "INVALID_PATTERN"
		if strings.Contains(err.Error(), "exclude") {
			code = "INVALID_EXCLUDE_PATTERN"
		}
		return nil, outputErrorCommon(globals, code, err.Error())
	}
	return f, nil
}

// escapeJSON escapes special characters for JSON string
func escapeJSON(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}
