package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/samber/lo"
	"github.com/vburojevic/rtw/internal/domain"
)

// TextWriter renders tail output for humans: appended content verbatim (the
// terminal behaves like tail -f) and notices as prefixed lines.
type TextWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextWriter creates a writer emitting to w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteData writes the appended slice as-is.
func (t *TextWriter) WriteData(e *domain.Data) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.w, e.Content)
	return err
}

// WriteNotice writes a one-line annotation, e.g. for truncation or errors.
func (t *TextWriter) WriteNotice(format string, args ...interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "[rtw] "+format+"\n", args...)
	return err
}

// WriteSessionBoundary marks a generation rollover in the text stream.
func (t *TextWriter) WriteSessionBoundary(start *domain.SessionStart) error {
	size := lo.Ternary(start.RemoteSize >= 0, fmt.Sprintf("%d bytes", start.RemoteSize), "size unknown")
	return t.WriteNotice("session %d started (%s)", start.Session, size)
}
