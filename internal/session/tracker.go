package session

import (
	"sync"
	"time"

	"github.com/vburojevic/rtw/internal/domain"
)

// Tracker follows remote-file generations: generation 1 begins with the
// first successful load, and every detected truncation (the server rotated
// or rewrote the file) rolls the tail over into a new generation.
type Tracker struct {
	mu            sync.Mutex
	url           string
	current       int
	sessionStart  time.Time
	bytesAppended int64
	appends       int
	errorCount    int
	initialized   bool
}

// Change contains the events emitted when a generation rolls over.
type Change struct {
	End   *domain.SessionEnd
	Start *domain.SessionStart
}

// NewTracker creates a tracker for one remote URL.
func NewTracker(url string) *Tracker {
	return &Tracker{url: url}
}

// RecordAppend notes appended content and opens generation 1 on the first
// call. Returns a Change carrying the initial session start, or nil.
func (t *Tracker) RecordAppend(bytes int, remoteSize int64) *Change {
	t.mu.Lock()
	defer t.mu.Unlock()

	var change *Change
	if !t.initialized {
		t.initialized = true
		t.current = 1
		t.sessionStart = time.Now()
		change = &Change{
			Start: domain.NewSessionStart(t.current, t.url, remoteSize, false),
		}
	}
	t.bytesAppended += int64(bytes)
	t.appends++
	return change
}

// RecordError counts a failed cycle against the current generation.
func (t *Tracker) RecordError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initialized {
		t.errorCount++
	}
}

// RecordTruncation closes the current generation and opens the next one.
func (t *Tracker) RecordTruncation(newSize int64) *Change {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		// Truncation before anything was ever loaded; nothing to close.
		t.initialized = true
		t.current = 1
		t.sessionStart = time.Now()
		return &Change{
			Start: domain.NewSessionStart(t.current, t.url, newSize, false),
		}
	}

	previous := t.current
	summary := t.summaryLocked()

	t.current++
	t.sessionStart = time.Now()
	t.bytesAppended = 0
	t.appends = 0
	t.errorCount = 0

	return &Change{
		End:   domain.NewSessionEnd(previous, summary),
		Start: domain.NewSessionStart(t.current, t.url, newSize, true),
	}
}

// Current returns the current generation number (0 before the first load).
func (t *Tracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// FinalSummary returns the closing event for the current generation, or nil
// when nothing was ever loaded.
func (t *Tracker) FinalSummary() *domain.SessionEnd {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return nil
	}
	return domain.NewSessionEnd(t.current, t.summaryLocked())
}

// Stats returns current generation statistics.
func (t *Tracker) Stats() (session int, bytes int64, appends, errors int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.bytesAppended, t.appends, t.errorCount
}

func (t *Tracker) summaryLocked() domain.SessionSummary {
	return domain.SessionSummary{
		BytesAppended:   t.bytesAppended,
		Appends:         t.appends,
		Errors:          t.errorCount,
		DurationSeconds: int(time.Since(t.sessionStart).Seconds()),
	}
}
