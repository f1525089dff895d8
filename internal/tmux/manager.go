package tmux

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"sync"
	"time"

	gotmux "github.com/GianlucaP106/gotmux/gotmux"
	"github.com/vburojevic/rtw/internal/domain"
)

// ErrNoSessionAvailable is returned when pane operations run before a
// session was created.
var ErrNoSessionAvailable = errors.New("no tmux session available")

// Config holds tmux session configuration
type Config struct {
	SessionName string
	URL         string
	Detached    bool
}

// Manager owns one tmux session used as the tail's output surface.
type Manager struct {
	mu      sync.Mutex
	config  *Config
	tmux    *gotmux.Tmux
	session *gotmux.Session
}

// IsTmuxAvailable reports whether the tmux binary is on PATH.
func IsTmuxAvailable() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// GenerateSessionName derives a stable session name from the remote URL,
// e.g. rtw-logs-example-com.
func GenerateSessionName(rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, host)
	sanitized = strings.Trim(sanitized, "-")
	if sanitized == "" {
		sanitized = "remote"
	}
	return "rtw-" + sanitized
}

// NewManager creates a manager bound to the local tmux server.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil || cfg.SessionName == "" {
		return nil, errors.New("session name is required")
	}
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tmux: %w", err)
	}
	return &Manager{config: cfg, tmux: t}, nil
}

// GetOrCreateSession attaches to an existing session of the configured name
// or creates a detached one.
func (m *Manager) GetOrCreateSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.tmux.GetSessionByName(m.config.SessionName)
	if err == nil && session != nil {
		m.session = session
		return nil
	}

	session, err = m.tmux.NewSession(&gotmux.SessionOptions{
		Name: m.config.SessionName,
	})
	if err != nil {
		return fmt.Errorf("failed to create tmux session: %w", err)
	}
	m.session = session
	return nil
}

// AttachCommand returns the shell command a user runs to view the session.
func (m *Manager) AttachCommand() string {
	return fmt.Sprintf("tmux attach -t %s", m.config.SessionName)
}

// Cleanup flushes state. The session is intentionally left running so the
// user can still read the tail after rtw exits.
func (m *Manager) Cleanup() {}

func (m *Manager) paneTarget() string {
	return fmt.Sprintf("%s:0.0", m.config.SessionName)
}

// ClearPane clears the pane content and scrollback history
func (m *Manager) ClearPane() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return ErrNoSessionAvailable
	}

	target := m.paneTarget()
	if err := exec.Command("tmux", "send-keys", "-t", target, "-R").Run(); err != nil {
		return fmt.Errorf("failed to reset terminal: %w", err)
	}
	if err := exec.Command("tmux", "clear-history", "-t", target).Run(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if err := exec.Command("tmux", "send-keys", "-t", target, "clear", "Enter").Run(); err != nil {
		return fmt.Errorf("failed to clear screen: %w", err)
	}
	return nil
}

// ClearPaneWithBanner clears the pane and displays a session marker
func (m *Manager) ClearPaneWithBanner(message string) error {
	if err := m.ClearPane(); err != nil {
		return err
	}

	banner := fmt.Sprintf(
		"═══════════════════════════════════════════════════════════\n"+
			"  RemoteTailWatcher - %s\n"+
			"  Session: %s | Started: %s\n"+
			"═══════════════════════════════════════════════════════════",
		message,
		m.config.SessionName,
		time.Now().Format("2006-01-02 15:04:05"),
	)

	return m.WriteLines(strings.Split(banner, "\n"))
}

// WriteSessionBanner writes a visual banner when the remote file is rotated
func (m *Manager) WriteSessionBanner(session int, url string, prevSummary *domain.SessionSummary) error {
	prevInfo := ""
	if prevSummary != nil {
		prevInfo = fmt.Sprintf("Previous: %d bytes, %d errors | ", prevSummary.BytesAppended, prevSummary.Errors)
	}

	banner := fmt.Sprintf(
		"\n══════════════════════════════════════════════════════════════\n"+
			"  SESSION %d: %s\n"+
			"  %s%s\n"+
			"══════════════════════════════════════════════════════════════",
		session,
		url,
		prevInfo,
		time.Now().Format("2006-01-02 15:04:05"),
	)

	return m.WriteLines(strings.Split(banner, "\n"))
}

// WriteLine writes a single line to the tmux pane using echo
func (m *Manager) WriteLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return ErrNoSessionAvailable
	}

	escaped := escapeTmuxString(line)
	return exec.Command("tmux", "send-keys", "-t", m.paneTarget(),
		fmt.Sprintf("echo '%s'", escaped), "Enter").Run()
}

// WriteLines writes multiple lines efficiently
func (m *Manager) WriteLines(lines []string) error {
	for _, line := range lines {
		if err := m.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// escapeTmuxString escapes special characters for tmux send-keys
func escapeTmuxString(s string) string {
	// Escape single quotes for shell
	s = strings.ReplaceAll(s, "'", "'\"'\"'")
	// Escape backslashes
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return s
}
