package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/rtw/internal/domain"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	dec := json.NewDecoder(buf)
	var m map[string]interface{}
	require.NoError(t, dec.Decode(&m))
	return m
}

func TestWriteData(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteData(domain.NewData(1, []byte("line\n"), 512)))

	m := decodeLine(t, buf)
	require.Equal(t, "data_appended", m["type"])
	require.EqualValues(t, SchemaVersion, m["schemaVersion"])
	require.Equal(t, "line\n", m["content"])
	require.EqualValues(t, 5, m["bytes"])
	require.EqualValues(t, 512, m["remote_size"])
}

func TestWriteErrorWithHint(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteError("FETCH_FAILED", "connection refused", "is the server up?"))

	m := decodeLine(t, buf)
	require.Equal(t, "error", m["type"])
	require.Equal(t, "FETCH_FAILED", m["code"])
	require.Equal(t, "connection refused", m["message"])
	require.Equal(t, "is the server up?", m["hint"])
}

func TestWriteReady(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteReady(domain.NewReady("http://example.com/log", 30720, 1000)))

	m := decodeLine(t, buf)
	require.Equal(t, "ready", m["type"])
	require.Equal(t, "http://example.com/log", m["url"])
	require.EqualValues(t, 30720, m["load_bytes"])
	require.EqualValues(t, 1000, m["poll_interval_ms"])
}

func TestTextWriterDataIsVerbatim(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	require.NoError(t, w.WriteData(domain.NewData(1, []byte("a\nb\n"), 4)))
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestTextWriterNotices(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	require.NoError(t, w.WriteNotice("truncated: %d -> %d", 100, 2))
	assert.Equal(t, "[rtw] truncated: 100 -> 2\n", buf.String())

	buf.Reset()
	require.NoError(t, w.WriteSessionBoundary(domain.NewSessionStart(2, "http://example.com/log", -1, true)))
	assert.Equal(t, "[rtw] session 2 started (size unknown)\n", buf.String())
}
