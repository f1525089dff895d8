package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/rtw/internal/tail"
)

const maxLines = 5000

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

type keyMap struct {
	Quit    key.Binding
	Pause   key.Binding
	Refresh key.Binding
	Top     key.Binding
	Bottom  key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "pause/resume"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "poll now"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
}

type dataMsg tail.DataAppended

type noticeMsg struct{ notice tail.Notice }

// Model is the interactive tail viewer.
type Model struct {
	url      string
	poller   *tail.Poller
	data     <-chan tail.DataAppended
	notices  <-chan tail.Notice
	viewport viewport.Model
	lines    []string
	carry    string
	session  int
	size     int64
	follow   bool
	ready    bool
	width    int
	height   int
	lastNote string
}

// New creates the TUI model. The poller must already be started; the model
// drives pause/resume and manual polls through it.
func New(url string, poller *tail.Poller, data <-chan tail.DataAppended, notices <-chan tail.Notice) Model {
	return Model{
		url:     url,
		poller:  poller,
		data:    data,
		notices: notices,
		session: 1,
		size:    -1,
		follow:  true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForData(), m.waitForNotice())
}

func (m Model) waitForData() tea.Cmd {
	return func() tea.Msg {
		d, ok := <-m.data
		if !ok {
			return tea.Quit()
		}
		return dataMsg(d)
	}
}

func (m Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-m.notices
		if !ok {
			return tea.Quit()
		}
		return noticeMsg{notice: n}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			if m.poller != nil {
				if m.poller.Paused() {
					m.poller.Resume()
				} else {
					m.poller.Pause()
				}
			}
			return m, nil
		case key.Matches(msg, keys.Refresh):
			if m.poller != nil {
				m.poller.Poll()
			}
			return m, nil
		case key.Matches(msg, keys.Top):
			m.follow = false
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.follow = true
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refreshContent()

	case dataMsg:
		m.appendContent(string(msg.Content))
		m.size = msg.Size
		m.refreshContent()
		cmds = append(cmds, m.waitForData())

	case noticeMsg:
		switch n := msg.notice.(type) {
		case tail.Truncated:
			m.session++
			m.lines = m.lines[:0]
			m.carry = ""
			m.size = n.NewSize
			m.lastNote = fmt.Sprintf("remote truncated (was %d bytes)", n.OldSize)
		case tail.FetchError:
			m.lastNote = fmt.Sprintf("fetch error: %v", n.Cause)
		case tail.MalformedResponse:
			m.lastNote = fmt.Sprintf("malformed response: %s (status %d)", n.Reason, n.Status)
		}
		m.refreshContent()
		cmds = append(cmds, m.waitForNotice())
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) appendContent(chunk string) {
	chunk = m.carry + chunk
	parts := strings.Split(chunk, "\n")
	m.carry = parts[len(parts)-1]
	m.lines = append(m.lines, parts[:len(parts)-1]...)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	content := strings.Join(m.lines, "\n")
	if m.carry != "" {
		if content != "" {
			content += "\n"
		}
		content += m.carry
	}
	m.viewport.SetContent(content)
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := titleStyle.Render(fmt.Sprintf(" rtw %s ", m.url))
	status := statusStyle.Render(fmt.Sprintf("session %d | %s | %d lines", m.session, m.sizeLabel(), len(m.lines)))
	if m.poller != nil && m.poller.Paused() {
		status += " " + pausedStyle.Render("PAUSED")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, " ", status)

	footer := helpStyle.Render("q quit · space pause · r poll · g/G top/bottom")
	if m.lastNote != "" {
		footer = noticeStyle.Render(m.lastNote) + "\n" + footer
	} else {
		footer = "\n" + footer
	}

	return fmt.Sprintf("%s\n\n%s\n%s", header, m.viewport.View(), footer)
}

func (m Model) sizeLabel() string {
	if m.size < 0 {
		return "size unknown"
	}
	return fmt.Sprintf("%d bytes", m.size)
}
