package tail

import (
	"net/http"
	"strconv"
	"strings"
)

// OutcomeKind classifies a range response.
type OutcomeKind int

const (
	// OutcomeNewBytes carries fresh content (possibly including the anchor byte).
	OutcomeNewBytes OutcomeKind = iota
	// OutcomeUnchanged means only the re-fetched anchor byte came back.
	OutcomeUnchanged
	// OutcomeTruncated means the file shrank since the size was last observed.
	OutcomeTruncated
	// OutcomeMalformed covers every response the protocol does not allow.
	OutcomeMalformed
)

// Malformed-response reasons, stable strings so agents can match on them.
const (
	ReasonMissingContentRange = "missing_content_range"
	ReasonBadContentRange     = "bad_content_range"
	ReasonNotPartial          = "not_partial"
	ReasonUnexpectedStatus    = "unexpected_status"
	ReasonResponseTooLong     = "response_too_long"
	ReasonMissingContentLen   = "missing_content_length"
)

// Outcome is the typed result of classifying one HTTP response.
type Outcome struct {
	Kind OutcomeKind

	// Body is the raw response body for OutcomeNewBytes.
	Body []byte

	// TotalSize is the server-reported file size for OutcomeNewBytes and
	// OutcomeUnchanged, or the newly observed size after truncation. -1 when
	// the response exposed no size.
	TotalSize int64

	// Reason, Status and Header describe OutcomeMalformed for diagnostics.
	Reason string
	Status int
	Header http.Header
}

// Interpret classifies status, headers and body against the plan that
// produced the request. Transport-level failures never reach this function;
// the poller reports those separately.
func Interpret(status int, header http.Header, body []byte, plan Plan) Outcome {
	switch status {
	case http.StatusPartialContent:
		total, reason := parseContentRangeTotal(header.Get("Content-Range"))
		if reason != "" {
			return malformed(reason, status, header)
		}
		if !plan.FirstLoad && len(body) == 1 {
			return Outcome{Kind: OutcomeUnchanged, TotalSize: total}
		}
		return Outcome{Kind: OutcomeNewBytes, Body: body, TotalSize: total}

	case http.StatusOK:
		if plan.ExpectPartial {
			// The server ignored the Range header where a partial response
			// was mandatory.
			return malformed(ReasonNotPartial, status, header)
		}
		total := int64(len(body))
		if cl := header.Get("Content-Length"); cl != "" {
			if n, ok := parseDigits(cl); ok {
				total = n
			}
		}
		return Outcome{Kind: OutcomeNewBytes, Body: body, TotalSize: total}

	case http.StatusRequestedRangeNotSatisfiable:
		// Even the anchor byte is gone: the file shrank. A 416 may expose the
		// current size as "bytes */<total>".
		total := int64(-1)
		if cr := header.Get("Content-Range"); cr != "" {
			if idx := strings.LastIndexByte(cr, '/'); idx >= 0 {
				if n, ok := parseDigits(strings.TrimSpace(cr[idx+1:])); ok {
					total = n
				}
			}
		}
		return Outcome{Kind: OutcomeTruncated, TotalSize: total}

	default:
		return malformed(ReasonUnexpectedStatus, status, header)
	}
}

func malformed(reason string, status int, header http.Header) Outcome {
	return Outcome{Kind: OutcomeMalformed, Reason: reason, Status: status, Header: header}
}

// parseContentRangeTotal extracts <total> from "<start>-<end>/<total>",
// tolerating the RFC 7233 "bytes " unit prefix. Returns a non-empty reason
// on failure.
func parseContentRangeTotal(value string) (int64, string) {
	if value == "" {
		return 0, ReasonMissingContentRange
	}
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "bytes"))
	idx := strings.LastIndexByte(v, '/')
	if idx < 0 {
		return 0, ReasonBadContentRange
	}
	total, ok := parseDigits(strings.TrimSpace(v[idx+1:]))
	if !ok {
		return 0, ReasonBadContentRange
	}
	return total, ""
}

// parseDigits is a strict non-negative integer parse: digits only, no signs,
// no whitespace.
func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
