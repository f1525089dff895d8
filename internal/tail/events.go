package tail

import "net/http"

// DataAppended notifies listeners of genuinely new tail content. Size is the
// remote file size after the cycle that produced it.
type DataAppended struct {
	Content []byte
	Size    int64
}

// FetchError notifies listeners of a transport-level failure (no HTTP
// response was obtained). The session pauses after emitting one.
type FetchError struct {
	Cause error
}

// MalformedResponse notifies listeners of a response the protocol does not
// allow: missing or unparsable Content-Range, an unexpected status, a 200
// where a partial response was required, or a too-long first load. Raw
// status and headers ride along for diagnostics.
type MalformedResponse struct {
	Reason string
	Status int
	Header http.Header
}

// Truncated notifies listeners that the remote file shrank. NewSize is -1
// when the 416 exposed no size.
type Truncated struct {
	OldSize int64
	NewSize int64
}

func (FetchError) noticeKind() string        { return "fetch_error" }
func (MalformedResponse) noticeKind() string { return "malformed_response" }
func (Truncated) noticeKind() string         { return "truncated" }

// Notice is the union of non-data notifications.
type Notice interface {
	noticeKind() string
}

// Sink receives typed notifications from a poller. Implementations must not
// block for long; they run on the poll goroutine.
type Sink interface {
	OnData(DataAppended)
	OnNotice(Notice)
}

type fanout struct {
	sinks []Sink
}

// Fanout combines sinks; nil entries are skipped.
func Fanout(sinks ...Sink) Sink {
	return fanout{sinks: sinks}
}

func (f fanout) OnData(e DataAppended) {
	for _, s := range f.sinks {
		if s == nil {
			continue
		}
		s.OnData(e)
	}
}

func (f fanout) OnNotice(n Notice) {
	for _, s := range f.sinks {
		if s == nil {
			continue
		}
		s.OnNotice(n)
	}
}

// ChannelSink adapts notifications onto channels for select loops. Events
// are dropped when a channel is full rather than stalling the poller.
type ChannelSink struct {
	data    chan DataAppended
	notices chan Notice
}

// NewChannelSink creates a sink with the given per-channel buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelSink{
		data:    make(chan DataAppended, buffer),
		notices: make(chan Notice, buffer),
	}
}

// Data returns the channel of appended-content events.
func (s *ChannelSink) Data() <-chan DataAppended { return s.data }

// Notices returns the channel of error and truncation notifications.
func (s *ChannelSink) Notices() <-chan Notice { return s.notices }

// OnData implements Sink.
func (s *ChannelSink) OnData(e DataAppended) {
	select {
	case s.data <- e:
	default:
	}
}

// OnNotice implements Sink.
func (s *ChannelSink) OnNotice(n Notice) {
	select {
	case s.notices <- n:
	default:
	}
}
