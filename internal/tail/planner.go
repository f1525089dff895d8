package tail

import "fmt"

// Plan describes the byte range to request on the next cycle and what a
// well-behaved server is allowed to answer with.
type Plan struct {
	// RangeSpec is the value portion of the Range header (without "bytes=").
	RangeSpec string

	// FirstLoad marks the initial suffix fetch, before the remote size is known.
	FirstLoad bool

	// ExpectPartial is true when only a 206 is acceptable. A 200 is still
	// legitimate for a first load (the whole file may be shorter than the
	// requested suffix).
	ExpectPartial bool
}

// PlanRange computes the next request for a session.
//
// With no known size it asks for the last loadBytes bytes ("-N" suffix
// range). Once the size is known it re-requests the last known byte as an
// anchor ("size-1 onwards"): an unchanged file then answers with exactly one
// byte, while a shrunken file answers 416 because even the anchor is out of
// range. Asking for "size-" instead would make an unchanged file
// indistinguishable from an error, since there is nothing past the last byte.
func PlanRange(knownSize *int64, loadBytes int64) Plan {
	if knownSize == nil {
		return Plan{
			RangeSpec: fmt.Sprintf("-%d", loadBytes),
			FirstLoad: true,
		}
	}
	start := *knownSize - 1
	if start < 0 {
		start = 0
	}
	return Plan{
		RangeSpec:     fmt.Sprintf("%d-", start),
		ExpectPartial: *knownSize > 1,
	}
}
