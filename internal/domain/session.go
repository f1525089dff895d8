package domain

import "time"

// SessionStart is emitted when a new remote-file generation begins. The
// first generation starts with the first successful load; later ones start
// when the server truncates (rotates) the file.
type SessionStart struct {
	Type          string `json:"type"` // "session_start"
	SchemaVersion int    `json:"schemaVersion"`
	Alert         string `json:"alert,omitempty"` // "REMOTE_TRUNCATED" when a previous generation existed
	Session       int    `json:"session"`         // Generation number (1, 2, 3...)
	URL           string `json:"url"`
	RemoteSize    int64  `json:"remote_size"` // Size at start, -1 when unknown
	Timestamp     string `json:"timestamp"`   // ISO8601
}

// SessionEnd is emitted when a generation ends (truncation detected or the
// tail stops).
type SessionEnd struct {
	Type          string         `json:"type"` // "session_end"
	SchemaVersion int            `json:"schemaVersion"`
	Session       int            `json:"session"`
	Summary       SessionSummary `json:"summary"`
}

// SessionSummary contains statistics about a completed generation.
type SessionSummary struct {
	BytesAppended   int64 `json:"bytes_appended"`
	Appends         int   `json:"appends"`
	Errors          int   `json:"errors"`
	DurationSeconds int   `json:"duration_seconds"`
}

// NewSessionStart creates a SessionStart event.
func NewSessionStart(session int, url string, remoteSize int64, truncated bool) *SessionStart {
	s := &SessionStart{
		Type:          "session_start",
		SchemaVersion: SchemaVersion,
		Session:       session,
		URL:           url,
		RemoteSize:    remoteSize,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	if truncated {
		s.Alert = "REMOTE_TRUNCATED"
	}
	return s
}

// NewSessionEnd creates a SessionEnd event.
func NewSessionEnd(session int, summary SessionSummary) *SessionEnd {
	return &SessionEnd{
		Type:          "session_end",
		SchemaVersion: SchemaVersion,
		Session:       session,
		Summary:       summary,
	}
}
