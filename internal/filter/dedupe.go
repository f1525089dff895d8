package filter

import "sync"

// Dedupe collapses consecutive identical lines, the usual noise shape in
// polled server logs. It reports how many times the suppressed line repeated
// once a different line shows up.
type Dedupe struct {
	mu       sync.Mutex
	lastLine string
	count    int
	started  bool
}

// NewDedupe creates a consecutive-line deduplicator.
func NewDedupe() *Dedupe {
	return &Dedupe{}
}

// Result describes the decision for one line.
type Result struct {
	Emit     bool
	Repeated int // times the previous line repeated, reported on the first different line
}

// Check decides whether a line should be emitted.
func (d *Dedupe) Check(line string) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started && line == d.lastLine {
		d.count++
		return Result{Emit: false}
	}

	repeated := 0
	if d.count > 0 {
		repeated = d.count
	}
	d.started = true
	d.lastLine = line
	d.count = 0
	return Result{Emit: true, Repeated: repeated}
}

// Reset clears the deduplication state, e.g. on session rollover.
func (d *Dedupe) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastLine = ""
	d.count = 0
	d.started = false
}

// Pending returns the number of suppressed repeats not yet reported.
func (d *Dedupe) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}
