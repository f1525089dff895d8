package cli

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/rtw/internal/filter"
)

// Ensure embedded flag structs keep flag names/aliases working for agents.
func TestTailFlagsParse(t *testing.T) {
	var c CLI
	parser, err := kong.New(&c, kong.Vars{"config_format": "auto"})
	require.NoError(t, err)

	_, err = parser.Parse([]string{
		"tail",
		"https://example.com/app.log",
		"--load-bytes", "4096",
		"--interval", "500ms",
		"-p", "ERROR",
		"-x", "heartbeat",
		"--dedupe",
		"--heartbeat", "5s",
		"--max-duration", "10m",
		"--max-bytes", "1048576",
		"--output-dir", "out",
	})
	require.NoError(t, err)

	require.Equal(t, "https://example.com/app.log", c.Tail.URL)
	require.EqualValues(t, 4096, c.Tail.LoadBytes)
	require.Equal(t, "500ms", c.Tail.Interval)
	require.Equal(t, "ERROR", c.Tail.Pattern)
	require.Equal(t, "heartbeat", c.Tail.Exclude)
	require.True(t, c.Tail.Dedupe)
	require.Equal(t, "5s", c.Tail.Heartbeat)
	require.Equal(t, "10m", c.Tail.MaxDuration)
	require.EqualValues(t, 1048576, c.Tail.MaxBytes)
	require.Equal(t, "out", c.Tail.OutputDir)
}

func TestWatchFlagsParse(t *testing.T) {
	var c CLI
	parser, err := kong.New(&c, kong.Vars{"config_format": "auto"})
	require.NoError(t, err)

	_, err = parser.Parse([]string{
		"watch",
		"https://example.com/app.log",
		"--on-pattern", "panic:notify.sh",
		"--on-truncate", "rotated.sh",
		"--cooldown", "10s",
	})
	require.NoError(t, err)

	require.Equal(t, "https://example.com/app.log", c.Watch.URL)
	require.Equal(t, []string{"panic:notify.sh"}, c.Watch.OnPattern)
	require.Equal(t, "rotated.sh", c.Watch.OnTruncate)
	require.Equal(t, "10s", c.Watch.Cooldown)
}

func TestDedupeLines(t *testing.T) {
	d := filter.NewDedupe()

	out, carry := dedupeLines(d, "a\na\nb\npartial")
	assert.Equal(t, "a\nb\n", out)
	assert.Equal(t, "partial", carry)

	// The carried partial completes on the next chunk.
	out, carry = dedupeLines(d, carry+" line\n")
	assert.Equal(t, "partial line\n", out)
	assert.Empty(t, carry)

	// No newline at all stays buffered.
	out, carry = dedupeLines(d, "tail")
	assert.Empty(t, out)
	assert.Equal(t, "tail", carry)
}
