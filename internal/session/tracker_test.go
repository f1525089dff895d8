package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerOpensGenerationOnFirstAppend(t *testing.T) {
	tr := NewTracker("http://example.com/log")

	change := tr.RecordAppend(11, 11)
	require.NotNil(t, change)
	require.NotNil(t, change.Start)
	assert.Equal(t, 1, change.Start.Session)
	assert.Empty(t, change.Start.Alert)
	assert.Nil(t, change.End)

	// later appends stay inside the same generation
	assert.Nil(t, tr.RecordAppend(5, 16))
	session, bytes, appends, errs := tr.Stats()
	assert.Equal(t, 1, session)
	assert.EqualValues(t, 16, bytes)
	assert.Equal(t, 2, appends)
	assert.Zero(t, errs)
}

func TestTrackerRollsOverOnTruncation(t *testing.T) {
	tr := NewTracker("http://example.com/log")
	tr.RecordAppend(100, 100)
	tr.RecordError()

	change := tr.RecordTruncation(-1)
	require.NotNil(t, change)
	require.NotNil(t, change.End)
	require.NotNil(t, change.Start)

	assert.Equal(t, 1, change.End.Session)
	assert.EqualValues(t, 100, change.End.Summary.BytesAppended)
	assert.Equal(t, 1, change.End.Summary.Errors)

	assert.Equal(t, 2, change.Start.Session)
	assert.Equal(t, "REMOTE_TRUNCATED", change.Start.Alert)
	assert.EqualValues(t, -1, change.Start.RemoteSize)

	// counters reset for the new generation
	_, bytes, appends, errs := tr.Stats()
	assert.Zero(t, bytes)
	assert.Zero(t, appends)
	assert.Zero(t, errs)
	assert.Equal(t, 2, tr.Current())
}

func TestTrackerTruncationBeforeFirstLoad(t *testing.T) {
	tr := NewTracker("http://example.com/log")

	change := tr.RecordTruncation(42)
	require.NotNil(t, change)
	assert.Nil(t, change.End, "no generation existed to close")
	require.NotNil(t, change.Start)
	assert.Equal(t, 1, change.Start.Session)
}

func TestTrackerFinalSummary(t *testing.T) {
	tr := NewTracker("http://example.com/log")
	assert.Nil(t, tr.FinalSummary(), "nothing loaded, nothing to summarize")

	tr.RecordAppend(7, 7)
	end := tr.FinalSummary()
	require.NotNil(t, end)
	assert.Equal(t, 1, end.Session)
	assert.EqualValues(t, 7, end.Summary.BytesAppended)
}
