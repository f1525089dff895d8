package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vburojevic/rtw/internal/domain"
)

// SchemaVersion of the NDJSON output contract.
const SchemaVersion = domain.SchemaVersion

// NDJSONWriter emits one JSON object per line. Safe for concurrent use.
type NDJSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewNDJSONWriter creates a writer emitting to w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

// Write encodes any event as a single NDJSON line.
func (w *NDJSONWriter) Write(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// WriteError emits the generic machine-readable failure envelope.
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	return w.Write(domain.NewErrorEvent(code, message, hint...))
}

// WriteReady emits the session-ready handshake.
func (w *NDJSONWriter) WriteReady(e *domain.Ready) error { return w.Write(e) }

// WriteData emits an appended-content event.
func (w *NDJSONWriter) WriteData(e *domain.Data) error { return w.Write(e) }

// WriteHeartbeat emits a liveness event.
func (w *NDJSONWriter) WriteHeartbeat(e *domain.Heartbeat) error { return w.Write(e) }
