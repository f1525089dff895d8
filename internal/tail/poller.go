package tail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Defaults for poller options left at their zero value.
const (
	DefaultLoadBytes    = 30720
	DefaultPollInterval = time.Second
)

// Options configures a Poller.
type Options struct {
	// URL identifies the remote file. Required.
	URL string

	// LoadBytes caps the retained tail window. Defaults to DefaultLoadBytes.
	LoadBytes int64

	// PollInterval is the delay between cycles. Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// Paused starts the session quiescent; cycles are skipped until Resume.
	Paused bool

	// Transport performs the HTTP exchanges. Defaults to NewHTTPTransport().
	Transport Transport

	// Sink receives notifications. Required.
	Sink Sink

	// Clock drives scheduling; tests install a mock. Defaults to the wall clock.
	Clock clock.Clock

	// Logger enables verbose per-cycle diagnostics when non-nil.
	Logger *zap.SugaredLogger
}

// Poller drives the range-tailing loop for one remote file: plan a range,
// fetch, classify, merge, notify, reschedule. One request is in flight at
// most; a Poll while loading is a no-op, not a queued request.
type Poller struct {
	url       string
	loadBytes int64
	interval  time.Duration
	transport Transport
	sink      Sink
	clk       clock.Clock
	log       *zap.SugaredLogger

	mu        sync.Mutex
	knownSize *int64
	paused    bool
	loading   bool
	buf       *Buffer

	startOnce sync.Once
	stopOnce  sync.Once
	stopped   chan struct{}
	kick      chan struct{}
	cancel    context.CancelFunc
}

// Stats is a point-in-time snapshot of a session.
type Stats struct {
	URL       string
	KnownSize int64 // -1 until the first successful response
	Buffered  int
	Paused    bool
	Loading   bool
}

// New validates options and creates a poller. It does not start polling.
func New(opts Options) (*Poller, error) {
	if opts.URL == "" {
		return nil, errors.New("url is required")
	}
	if opts.LoadBytes < 0 {
		return nil, errors.New("load bytes must be a positive integer")
	}
	if opts.PollInterval < 0 {
		return nil, errors.New("poll interval must be a positive duration")
	}
	if opts.Sink == nil {
		return nil, errors.New("sink is required")
	}
	loadBytes := opts.LoadBytes
	if loadBytes == 0 {
		loadBytes = DefaultLoadBytes
	}
	interval := opts.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	transport := opts.Transport
	if transport == nil {
		transport = NewHTTPTransport()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Poller{
		url:       opts.URL,
		loadBytes: loadBytes,
		interval:  interval,
		transport: transport,
		sink:      opts.Sink,
		clk:       clk,
		log:       opts.Logger,
		paused:    opts.Paused,
		buf:       NewBuffer(loadBytes),
		stopped:   make(chan struct{}),
		kick:      make(chan struct{}),
	}, nil
}

// Start launches the poll loop. The first cycle runs immediately; later
// cycles follow at the configured interval. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		go p.run(ctx)
	})
}

// Stop cancels the session: any in-flight request is aborted via its context
// and the already-scheduled next cycle will not fire. Idempotent.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
		if p.cancel != nil {
			p.cancel()
		}
	})
}

// Poll requests an immediate cycle. While a request is in flight or the loop
// is mid-cycle this is a documented no-op; there is no request queue.
func (p *Poller) Poll() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Pause makes the loop quiescent from the next cycle boundary. An in-flight
// request still completes and its outcome is applied.
func (p *Poller) Pause() { p.setPaused(true) }

// Resume re-enables polling and triggers a cycle.
func (p *Poller) Resume() {
	p.setPaused(false)
	p.Poll()
}

// Paused reports whether the session is quiescent.
func (p *Poller) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Contents returns a copy of the retained tail window.
func (p *Poller) Contents() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Bytes()
}

// Snapshot returns current session statistics.
func (p *Poller) Snapshot() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	size := int64(-1)
	if p.knownSize != nil {
		size = *p.knownSize
	}
	return Stats{
		URL:       p.url,
		KnownSize: size,
		Buffered:  p.buf.Len(),
		Paused:    p.paused,
		Loading:   p.loading,
	}
}

func (p *Poller) setPaused(v bool) {
	p.mu.Lock()
	p.paused = v
	p.mu.Unlock()
}

// run is the self-perpetuating loop: cycle, then wait for the timer, a
// manual Poll, or Stop. The kick channel is unbuffered on purpose; a Poll
// that arrives while a cycle is executing finds no receiver and is dropped,
// which is what gives Poll its no-op-while-loading contract.
func (p *Poller) run(ctx context.Context) {
	for {
		select {
		case <-p.stopped:
			return
		default:
		}
		p.cycle(ctx)
		t := p.clk.Timer(p.interval)
		select {
		case <-t.C:
		case <-p.kick:
			t.Stop()
		case <-p.stopped:
			t.Stop()
			return
		}
	}
}

// cycle performs one plan→fetch→classify→apply pass. Skipped entirely while
// paused or loading; the loop reschedules regardless.
func (p *Poller) cycle(ctx context.Context) {
	p.mu.Lock()
	if p.paused || p.loading {
		p.mu.Unlock()
		return
	}
	p.loading = true
	plan := PlanRange(p.knownSize, p.loadBytes)
	p.mu.Unlock()

	p.debugf("requesting range %s (first_load=%v expect_partial=%v)",
		plan.RangeSpec, plan.FirstLoad, plan.ExpectPartial)

	resp, err := p.transport.Get(ctx, p.url, plan.RangeSpec)

	p.mu.Lock()
	p.loading = false
	if err != nil {
		// No response at all. Continued polling is likely futile until
		// something external changes, so the session pauses itself.
		p.paused = true
		p.mu.Unlock()
		p.debugf("transport failure, pausing: %v", err)
		p.sink.OnNotice(FetchError{Cause: err})
		return
	}

	out := Interpret(resp.Status, resp.Header, resp.Body, plan)
	switch out.Kind {
	case OutcomeNewBytes:
		appended, mergeErr := p.buf.Merge(out.Body, out.TotalSize, plan.FirstLoad)
		if mergeErr != nil {
			p.mu.Unlock()
			p.sink.OnNotice(MalformedResponse{
				Reason: ReasonResponseTooLong,
				Status: resp.Status,
				Header: resp.Header,
			})
			return
		}
		size := out.TotalSize
		p.knownSize = &size
		p.mu.Unlock()
		if len(appended) > 0 {
			p.sink.OnData(DataAppended{Content: appended, Size: size})
		}

	case OutcomeUnchanged:
		if out.TotalSize >= 0 {
			size := out.TotalSize
			p.knownSize = &size
		}
		p.mu.Unlock()

	case OutcomeTruncated:
		old := int64(-1)
		if p.knownSize != nil {
			old = *p.knownSize
		}
		if out.TotalSize >= 0 {
			size := out.TotalSize
			p.knownSize = &size
		} else {
			// The 416 exposed no size; forget it so the next cycle re-probes
			// with a fresh suffix load.
			p.knownSize = nil
		}
		p.buf.Reset()
		p.mu.Unlock()
		p.debugf("remote truncated: old_size=%d new_size=%d", old, out.TotalSize)
		p.sink.OnNotice(Truncated{OldSize: old, NewSize: out.TotalSize})

	case OutcomeMalformed:
		p.mu.Unlock()
		p.sink.OnNotice(MalformedResponse{
			Reason: out.Reason,
			Status: out.Status,
			Header: out.Header,
		})
	}
}

func (p *Poller) debugf(format string, args ...interface{}) {
	if p.log == nil {
		return
	}
	p.log.With("url", p.url).Debugf(format, args...)
}
