package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaCmd outputs JSON Schema for rtw output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (data,fetch_error,malformed,truncated,session,heartbeat,probe,error). Default: all"`
}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]interface{}{
		"data":        dataSchema(),
		"fetch_error": fetchErrorSchema(),
		"malformed":   malformedSchema(),
		"truncated":   truncatedSchema(),
		"session":     sessionSchema(),
		"heartbeat":   heartbeatSchema(),
		"probe":       probeSchema(),
		"error":       errorSchema(),
	}

	// Determine which schemas to output
	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = []string{"data", "fetch_error", "malformed", "truncated", "session", "heartbeat", "probe", "error"}
	}

	// Build output
	output := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "RemoteTailWatcher Output Schemas",
		"description": "JSON Schema definitions for all rtw NDJSON output types",
		"definitions": map[string]interface{}{},
	}

	defs := output["definitions"].(map[string]interface{})
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	// Output as JSON
	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func dataSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Data Appended",
		"description": "New bytes appended to the remote file",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "data_appended",
			},
			"session": map[string]interface{}{
				"type":        "integer",
				"description": "Tail generation the data belongs to (increments on remote truncation)",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "The appended bytes, verbatim",
			},
			"bytes": map[string]interface{}{
				"type":        "integer",
				"description": "Number of appended bytes",
			},
			"remote_size": map[string]interface{}{
				"type":        "integer",
				"description": "Total remote file size after the append",
			},
			"timestamp": map[string]interface{}{
				"type":        "string",
				"format":      "date-time",
				"description": "ISO8601 timestamp of the fetch",
			},
		},
		"required": []string{"type", "session", "content", "bytes", "remote_size", "timestamp"},
	}
}

func fetchErrorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Fetch Error",
		"description": "A poll cycle failed at the transport level; polling is paused",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "fetch_error",
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Underlying transport error",
			},
			"timestamp": map[string]interface{}{
				"type":   "string",
				"format": "date-time",
			},
		},
		"required": []string{"type", "message", "timestamp"},
	}
}

func malformedSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Malformed Response",
		"description": "The server answered in a way the range protocol cannot interpret",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "malformed_response",
			},
			"reason": map[string]interface{}{
				"type":        "string",
				"description": "Machine-readable reason code",
				"enum": []string{
					"missing_content_range",
					"bad_content_range",
					"not_partial",
					"unexpected_status",
					"response_too_long",
					"missing_content_length",
				},
			},
			"status": map[string]interface{}{
				"type":        "integer",
				"description": "HTTP status code of the offending response",
			},
			"headers": map[string]interface{}{
				"type":        "object",
				"description": "Response headers for diagnostics",
			},
			"timestamp": map[string]interface{}{
				"type":   "string",
				"format": "date-time",
			},
		},
		"required": []string{"type", "reason", "status", "timestamp"},
	}
}

func truncatedSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Remote Truncated",
		"description": "The remote file shrank; the tail restarted from the new contents",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "truncated",
			},
			"old_size": map[string]interface{}{
				"type":        "integer",
				"description": "Size the watcher believed before the truncation",
			},
			"new_size": map[string]interface{}{
				"type":        "integer",
				"description": "Size reported by the server, or -1 when unknown",
			},
			"timestamp": map[string]interface{}{
				"type":   "string",
				"format": "date-time",
			},
		},
		"required": []string{"type", "old_size", "new_size", "timestamp"},
	}
}

func sessionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session Boundary",
		"description": "Start or end of a tail generation",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type": "string",
				"enum": []string{"session_start", "session_end"},
			},
			"session": map[string]interface{}{
				"type":        "integer",
				"description": "Generation number, starting at 1",
			},
			"alert": map[string]interface{}{
				"type":        "string",
				"description": "Set to REMOTE_TRUNCATED when the generation opened because of a truncation",
			},
			"remote_size": map[string]interface{}{
				"type":        "integer",
				"description": "Remote size at the boundary, or -1 when unknown",
			},
			"timestamp": map[string]interface{}{
				"type":   "string",
				"format": "date-time",
			},
		},
		"required": []string{"type", "session", "timestamp"},
	}
}

func heartbeatSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Heartbeat",
		"description": "Keepalive message indicating the tail is active",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "heartbeat",
			},
			"timestamp": map[string]interface{}{
				"type":        "string",
				"format":      "date-time",
				"description": "ISO8601 timestamp of the heartbeat",
			},
			"uptime_seconds": map[string]interface{}{
				"type":        "integer",
				"description": "Seconds since the tail started",
			},
			"bytes_since_last": map[string]interface{}{
				"type":        "integer",
				"description": "Bytes appended since the last heartbeat",
			},
		},
		"required": []string{"type", "timestamp", "uptime_seconds", "bytes_since_last"},
	}
}

func probeSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Probe Result",
		"description": "Remote size established by a HEAD request",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "probe",
			},
			"url": map[string]interface{}{
				"type": "string",
			},
			"size": map[string]interface{}{
				"type":        "integer",
				"description": "Remote file size in bytes",
			},
			"timestamp": map[string]interface{}{
				"type":   "string",
				"format": "date-time",
			},
		},
		"required": []string{"type", "url", "size", "timestamp"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "Error message from rtw",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "error",
			},
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Error code (e.g., URL_REQUIRED, INVALID_PATTERN)",
				"enum": []string{
					"URL_REQUIRED",
					"INVALID_URL",
					"INVALID_PATTERN",
					"INVALID_EXCLUDE_PATTERN",
					"INVALID_DURATION",
					"INVALID_INTERVAL",
					"INVALID_HEARTBEAT",
					"INVALID_TIMEOUT",
					"INVALID_FLAGS",
					"INVALID_LOAD_BYTES",
					"PROBE_FAILED",
					"TAIL_FAILED",
					"TMUX_FAILED",
					"OUTPUT_DIR_FAILED",
				},
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable error description",
			},
			"hint": map[string]interface{}{
				"type":        "string",
				"description": "Optional suggestion for fixing the error",
			},
		},
		"required": []string{"type", "code", "message"},
	}
}

// Helper to output a quick reference
func (c *SchemaCmd) outputTextHelp(globals *Globals) {
	fmt.Fprintln(globals.Stdout, "RemoteTailWatcher Output Types:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "  data        - New bytes appended to the remote file")
	fmt.Fprintln(globals.Stdout, "  fetch_error - Transport failure, polling paused")
	fmt.Fprintln(globals.Stdout, "  malformed   - Uninterpretable server response")
	fmt.Fprintln(globals.Stdout, "  truncated   - Remote file shrank")
	fmt.Fprintln(globals.Stdout, "  session     - Tail generation boundary")
	fmt.Fprintln(globals.Stdout, "  heartbeat   - Keepalive message")
	fmt.Fprintln(globals.Stdout, "  probe       - HEAD probe result")
	fmt.Fprintln(globals.Stdout, "  error       - Error from rtw")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Use --type to filter: rtw schema --type data,error")
}
