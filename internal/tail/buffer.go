package tail

import (
	"bytes"
	"errors"
)

// ErrResponseTooLong is returned when a first-load suffix request comes back
// with more bytes than were asked for, meaning the server mishandled the
// Range header. No merge happens in that case.
var ErrResponseTooLong = errors.New("server response longer than requested suffix")

// Buffer retains a bounded, line-aligned window of the most recent remote
// content. It is not safe for concurrent use; the poller is its only caller.
type Buffer struct {
	limit int64
	data  []byte
}

// NewBuffer creates a buffer capped at limit bytes.
func NewBuffer(limit int64) *Buffer {
	if limit < 0 {
		limit = 0
	}
	return &Buffer{limit: limit}
}

// Merge folds one NewBytes response into the buffer and returns the slice of
// genuinely new content, before any trimming. Listeners never see the anchor
// byte or trim housekeeping.
//
// On a first load the body replaces the buffer: when the reported total is
// larger than the body, the body is a strict suffix of the file and its
// partial leading line (everything through the first terminator) is
// discarded; when the whole file fit, it is kept verbatim. On subsequent
// merges the leading anchor byte is dropped and the rest appended, then the
// buffer is trimmed back to the limit on a line boundary.
func (b *Buffer) Merge(body []byte, totalSize int64, firstLoad bool) ([]byte, error) {
	if firstLoad {
		if int64(len(body)) > b.limit {
			return nil, ErrResponseTooLong
		}
		kept := body
		if totalSize > int64(len(body)) {
			if idx := bytes.IndexByte(body, '\n'); idx >= 0 {
				kept = body[idx+1:]
			}
		}
		b.data = append(b.data[:0], kept...)
		return appendedCopy(kept), nil
	}

	if len(body) <= 1 {
		// Anchor byte only, or nothing at all: no new content.
		return nil, nil
	}
	fresh := body[1:]
	b.data = append(b.data, fresh...)
	b.trim()
	return appendedCopy(fresh), nil
}

// trim discards the oldest content so len(data) <= limit, cutting on a line
// boundary. When a single line is longer than the whole limit there is no
// boundary to cut on; the bound wins and the line loses its head.
func (b *Buffer) trim() {
	excess := int64(len(b.data)) - b.limit
	if excess <= 0 {
		return
	}
	if idx := bytes.IndexByte(b.data[excess-1:], '\n'); idx >= 0 {
		b.data = b.data[excess+int64(idx):]
		return
	}
	b.data = b.data[excess:]
}

// Len reports the retained byte count.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns a copy of the retained window.
func (b *Buffer) Bytes() []byte { return appendedCopy(b.data) }

// String returns the retained window as a string.
func (b *Buffer) String() string { return string(b.data) }

// Reset drops all retained content, e.g. after the remote file was truncated.
func (b *Buffer) Reset() { b.data = b.data[:0] }

// appendedCopy detaches a slice from the buffer's backing array so later
// appends cannot clobber content already handed to listeners.
func appendedCopy(p []byte) []byte {
	if len(p) == 0 {
		return nil
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out
}
