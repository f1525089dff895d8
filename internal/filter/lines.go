package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// LineFilter applies include/exclude regexes to the lines of an appended
// slice. Nil patterns pass everything through.
type LineFilter struct {
	pattern *regexp.Regexp
	exclude *regexp.Regexp
}

// NewLineFilter compiles the given patterns; empty strings disable the
// corresponding check.
func NewLineFilter(pattern, exclude string) (*LineFilter, error) {
	f := &LineFilter{}
	var err error
	if pattern != "" {
		if f.pattern, err = regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}
	if exclude != "" {
		if f.exclude, err = regexp.Compile(exclude); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}
	return f, nil
}

// Empty reports whether the filter passes everything through unchanged.
func (f *LineFilter) Empty() bool {
	return f == nil || (f.pattern == nil && f.exclude == nil)
}

// MatchLine reports whether one line survives the filter.
func (f *LineFilter) MatchLine(line string) bool {
	if f.pattern != nil && !f.pattern.MatchString(line) {
		return false
	}
	if f.exclude != nil && f.exclude.MatchString(line) {
		return false
	}
	return true
}

// StreamFilter applies a LineFilter to appended chunks. Lines can be split
// across chunks, so incomplete tails are carried until their terminator
// arrives and only then judged.
type StreamFilter struct {
	filter *LineFilter
	carry  strings.Builder
}

// NewStreamFilter wraps a LineFilter for incremental input.
func NewStreamFilter(f *LineFilter) *StreamFilter {
	return &StreamFilter{filter: f}
}

// Feed consumes one appended chunk and returns the completed lines that
// survive the filter, terminators included.
func (s *StreamFilter) Feed(content string) string {
	if s.filter.Empty() {
		return content
	}
	var b strings.Builder
	rest := content
	for rest != "" {
		idx := strings.IndexByte(rest, '\n')
		if idx < 0 {
			s.carry.WriteString(rest)
			break
		}
		s.carry.WriteString(rest[:idx])
		line := s.carry.String()
		s.carry.Reset()
		if s.filter.MatchLine(line) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		rest = rest[idx+1:]
	}
	return b.String()
}

// Flush returns the pending unterminated line, if it matches. Called when
// the tail stops.
func (s *StreamFilter) Flush() string {
	if s.carry.Len() == 0 {
		return ""
	}
	line := s.carry.String()
	s.carry.Reset()
	if s.filter.Empty() || s.filter.MatchLine(line) {
		return line
	}
	return ""
}
