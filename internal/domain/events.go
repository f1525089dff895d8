package domain

import "time"

// SchemaVersion is stamped on every NDJSON event so agents can detect
// contract changes.
const SchemaVersion = 1

// Ready is emitted once when a tail session starts polling.
type Ready struct {
	Type           string `json:"type"` // "ready"
	SchemaVersion  int    `json:"schemaVersion"`
	URL            string `json:"url"`
	LoadBytes      int64  `json:"load_bytes"`
	PollIntervalMs int64  `json:"poll_interval_ms"`
	Timestamp      string `json:"timestamp"` // ISO8601
}

// Data carries newly appended remote content. Content holds only genuinely
// new bytes; the anchor byte and trim housekeeping never appear here.
type Data struct {
	Type          string `json:"type"` // "data_appended"
	SchemaVersion int    `json:"schemaVersion"`
	Session       int    `json:"session"`
	Content       string `json:"content"`
	Bytes         int    `json:"bytes"`
	RemoteSize    int64  `json:"remote_size"`
	Timestamp     string `json:"timestamp"`
}

// FetchError reports a transport-level failure. The session pauses after
// one, so Paused is always true today; the field exists so agents do not
// have to hardcode that policy.
type FetchError struct {
	Type          string `json:"type"` // "fetch_error"
	SchemaVersion int    `json:"schemaVersion"`
	Session       int    `json:"session"`
	Cause         string `json:"cause"`
	Paused        bool   `json:"paused"`
	Timestamp     string `json:"timestamp"`
}

// Malformed reports a response the range protocol does not allow, with the
// raw status and headers for diagnostics.
type Malformed struct {
	Type          string              `json:"type"` // "malformed_response"
	SchemaVersion int                 `json:"schemaVersion"`
	Session       int                 `json:"session"`
	Reason        string              `json:"reason"`
	Status        int                 `json:"status,omitempty"`
	Headers       map[string][]string `json:"headers,omitempty"`
	Timestamp     string              `json:"timestamp"`
}

// Truncated reports that the remote file shrank. NewSize is -1 when the
// server exposed no size on the 416.
type Truncated struct {
	Type          string `json:"type"` // "truncated"
	SchemaVersion int    `json:"schemaVersion"`
	Session       int    `json:"session"`
	OldSize       int64  `json:"old_size"`
	NewSize       int64  `json:"new_size"`
	Timestamp     string `json:"timestamp"`
}

// Heartbeat is an optional periodic liveness event for agents driving the
// tail non-interactively.
type Heartbeat struct {
	Type             string `json:"type"` // "heartbeat"
	SchemaVersion    int    `json:"schemaVersion"`
	Session          int    `json:"session"`
	Timestamp        string `json:"timestamp"`
	UptimeSeconds    int    `json:"uptime_seconds"`
	BytesSinceLast   int64  `json:"bytes_since_last"`
	AppendsSinceLast int    `json:"appends_since_last"`
	RemoteSize       int64  `json:"remote_size"`
}

// Cutoff is emitted when a tail ends because a --max-duration or
// --max-bytes limit was reached.
type Cutoff struct {
	Type          string `json:"type"` // "cutoff_reached"
	SchemaVersion int    `json:"schemaVersion"`
	Reason        string `json:"reason"` // "max_duration" or "max_bytes"
	Limit         int64  `json:"limit"`
	Observed      int64  `json:"observed"`
	Timestamp     string `json:"timestamp"`
}

// Probe is the result of a standalone HEAD size probe.
type Probe struct {
	Type          string `json:"type"` // "probe"
	SchemaVersion int    `json:"schemaVersion"`
	URL           string `json:"url"`
	Size          int64  `json:"size"`
	Timestamp     string `json:"timestamp"`
}

// ErrorEvent is the generic machine-readable failure envelope used by CLI
// commands.
type ErrorEvent struct {
	Type          string `json:"type"` // "error"
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// NewReady creates a Ready event.
func NewReady(url string, loadBytes int64, pollIntervalMs int64) *Ready {
	return &Ready{
		Type:           "ready",
		SchemaVersion:  SchemaVersion,
		URL:            url,
		LoadBytes:      loadBytes,
		PollIntervalMs: pollIntervalMs,
		Timestamp:      now(),
	}
}

// NewData creates a Data event for an appended slice.
func NewData(session int, content []byte, remoteSize int64) *Data {
	return &Data{
		Type:          "data_appended",
		SchemaVersion: SchemaVersion,
		Session:       session,
		Content:       string(content),
		Bytes:         len(content),
		RemoteSize:    remoteSize,
		Timestamp:     now(),
	}
}

// NewFetchError creates a FetchError event.
func NewFetchError(session int, cause error, paused bool) *FetchError {
	return &FetchError{
		Type:          "fetch_error",
		SchemaVersion: SchemaVersion,
		Session:       session,
		Cause:         cause.Error(),
		Paused:        paused,
		Timestamp:     now(),
	}
}

// NewMalformed creates a Malformed event.
func NewMalformed(session int, reason string, status int, headers map[string][]string) *Malformed {
	return &Malformed{
		Type:          "malformed_response",
		SchemaVersion: SchemaVersion,
		Session:       session,
		Reason:        reason,
		Status:        status,
		Headers:       headers,
		Timestamp:     now(),
	}
}

// NewTruncated creates a Truncated event.
func NewTruncated(session int, oldSize, newSize int64) *Truncated {
	return &Truncated{
		Type:          "truncated",
		SchemaVersion: SchemaVersion,
		Session:       session,
		OldSize:       oldSize,
		NewSize:       newSize,
		Timestamp:     now(),
	}
}

// NewCutoff creates a Cutoff event.
func NewCutoff(reason string, limit, observed int64) *Cutoff {
	return &Cutoff{
		Type:          "cutoff_reached",
		SchemaVersion: SchemaVersion,
		Reason:        reason,
		Limit:         limit,
		Observed:      observed,
		Timestamp:     now(),
	}
}

// NewProbe creates a Probe event.
func NewProbe(url string, size int64) *Probe {
	return &Probe{
		Type:          "probe",
		SchemaVersion: SchemaVersion,
		URL:           url,
		Size:          size,
		Timestamp:     now(),
	}
}

// NewErrorEvent creates an ErrorEvent.
func NewErrorEvent(code, message string, hint ...string) *ErrorEvent {
	e := &ErrorEvent{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		e.Hint = hint[0]
	}
	return e
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
