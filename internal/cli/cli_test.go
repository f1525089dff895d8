package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/rtw/internal/config"
)

// testGlobals creates a Globals struct with captured stdout/stderr
func testGlobals(format string) (*Globals, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Globals{
		Format:  format,
		Quiet:   false,
		Verbose: false,
		Stdout:  stdout,
		Stderr:  stderr,
		Config:  config.Default(),
	}, stdout, stderr
}

// --- Config Command Tests ---

func TestConfigShowCmd_Run(t *testing.T) {
	t.Run("outputs config in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		cmd := &ConfigShowCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "Current Configuration:")
		assert.Contains(t, output, "format:")
		assert.Contains(t, output, "load_bytes:")
		assert.Contains(t, output, "Defaults:")
	})

	t.Run("outputs config in NDJSON format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ConfigShowCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(stdout.Bytes(), &result)
		require.NoError(t, err)

		assert.Equal(t, "config", result["type"])
		assert.Contains(t, result, "format")
		assert.Contains(t, result, "defaults")

		defaults := result["defaults"].(map[string]interface{})
		assert.EqualValues(t, 30720, defaults["load_bytes"])
		assert.EqualValues(t, 1000, defaults["poll_interval_ms"])
	})
}

func TestConfigPathCmd_Run(t *testing.T) {
	t.Run("outputs path info in text format when no config", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		cmd := &ConfigPathCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		output := stdout.String()
		// Either shows the path or says no config found
		assert.True(t, strings.Contains(output, "Config file:") || strings.Contains(output, "No configuration file found"))
	})

	t.Run("outputs path in NDJSON format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ConfigPathCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(stdout.Bytes(), &result)
		require.NoError(t, err)

		assert.Equal(t, "config_path", result["type"])
		assert.Contains(t, result, "path")
	})
}

func TestConfigGenerateCmd_Run(t *testing.T) {
	t.Run("outputs sample config YAML", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		cmd := &ConfigGenerateCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "# rtw configuration file")
		assert.Contains(t, output, "format: ndjson")
		assert.Contains(t, output, "defaults:")
		assert.Contains(t, output, "load_bytes: 30720")
		assert.Contains(t, output, "poll_interval_ms: 1000")
	})
}

// --- Schema Command Tests ---

func TestSchemaCmd_Run(t *testing.T) {
	t.Run("outputs all schemas by default", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &SchemaCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(stdout.Bytes(), &result)
		require.NoError(t, err)

		assert.Equal(t, "http://json-schema.org/draft-07/schema#", result["$schema"])
		assert.Equal(t, "RemoteTailWatcher Output Schemas", result["title"])

		defs := result["definitions"].(map[string]interface{})
		assert.Contains(t, defs, "data")
		assert.Contains(t, defs, "fetch_error")
		assert.Contains(t, defs, "malformed")
		assert.Contains(t, defs, "truncated")
		assert.Contains(t, defs, "session")
		assert.Contains(t, defs, "heartbeat")
		assert.Contains(t, defs, "probe")
		assert.Contains(t, defs, "error")
	})

	t.Run("filters schemas by type", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &SchemaCmd{Type: []string{"data", "error"}}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(stdout.Bytes(), &result)
		require.NoError(t, err)

		defs := result["definitions"].(map[string]interface{})
		assert.Len(t, defs, 2)
		assert.Contains(t, defs, "data")
		assert.Contains(t, defs, "error")
		assert.NotContains(t, defs, "truncated")
	})
}

func TestDataSchema(t *testing.T) {
	schema := dataSchema()
	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props, "content")
	assert.Contains(t, props, "remote_size")
	assert.Contains(t, props, "session")
}

func TestMalformedSchemaReasons(t *testing.T) {
	schema := malformedSchema()
	props := schema["properties"].(map[string]interface{})
	reason := props["reason"].(map[string]interface{})
	assert.Contains(t, reason["enum"], "missing_content_range")
	assert.Contains(t, reason["enum"], "not_partial")
	assert.Contains(t, reason["enum"], "response_too_long")
}

// --- Version Command Tests ---

func TestVersionCmd_Run(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		cmd := &VersionCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "rtw version")
	})

	t.Run("ndjson format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &VersionCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "version", result["type"])
		assert.NotEmpty(t, result["version"])
	})
}

// --- Update Command Tests ---

func TestUpdateCmd_Run(t *testing.T) {
	t.Run("ndjson format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &UpdateCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "update", result["type"])
		assert.Contains(t, result["go_install"], "github.com/vburojevic/rtw")
	})
}

// --- Probe Command Tests ---

func TestProbeCmd_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Run("ndjson format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ProbeCmd{URL: server.URL, Timeout: "5s"}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "probe", result["type"])
		assert.EqualValues(t, 4096, result["size"])
		assert.Equal(t, server.URL, result["url"])
	})

	t.Run("text format renders a table", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		cmd := &ProbeCmd{URL: server.URL, Timeout: "5s"}

		err := cmd.Run(globals)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "4096")
	})

	t.Run("missing url fails", func(t *testing.T) {
		globals, _, stderr := testGlobals("text")
		cmd := &ProbeCmd{Timeout: "5s"}

		err := cmd.Run(globals)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "URL_REQUIRED")
	})
}

// --- Error and flag validation ---

func TestOutputErrorCommon(t *testing.T) {
	t.Run("ndjson emits error event", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")

		err := outputErrorCommon(globals, "INVALID_PATTERN", "bad regex", "fix the pattern")
		require.Error(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "error", result["type"])
		assert.Equal(t, "INVALID_PATTERN", result["code"])
		assert.Equal(t, "fix the pattern", result["hint"])
	})

	t.Run("text writes to stderr", func(t *testing.T) {
		globals, _, stderr := testGlobals("text")

		err := outputErrorCommon(globals, "INVALID_INTERVAL", "bad interval")
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "Error [INVALID_INTERVAL]: bad interval")
	})
}

func TestValidateFlags(t *testing.T) {
	t.Run("quiet with text is rejected", func(t *testing.T) {
		globals, _, _ := testGlobals("text")
		globals.Quiet = true
		require.Error(t, validateFlags(globals, false, ""))
	})

	t.Run("tmux with output dir is rejected", func(t *testing.T) {
		globals, _, _ := testGlobals("ndjson")
		require.Error(t, validateFlags(globals, true, "/tmp/out"))
	})

	t.Run("valid combinations pass", func(t *testing.T) {
		globals, _, _ := testGlobals("ndjson")
		require.NoError(t, validateFlags(globals, false, ""))
		require.NoError(t, validateFlags(globals, true, ""))
		require.NoError(t, validateFlags(globals, false, "/tmp/out"))
	})
}

// --- Helper tests ---

func TestParseOptionalDuration(t *testing.T) {
	d, err := parseOptionalDuration("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = parseOptionalDuration("0")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = parseOptionalDuration("30s")
	require.NoError(t, err)
	assert.Equal(t, "30s", d.String())

	_, err = parseOptionalDuration("nope")
	require.Error(t, err)

	_, err = parseOptionalDuration("-5s")
	require.ErrorContains(t, err, "negative")
}
