package tail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMissingContentLength is returned by ProbeSize when a HEAD response does
// not carry a Content-Length header.
var ErrMissingContentLength = errors.New("HEAD response missing Content-Length")

// Response is the transport-level view of one HTTP exchange: whatever status
// came back, its headers, and the fully read body.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport abstracts "send a request, get status+headers+body" so the
// poller can be driven by a stub in tests and by net/http in production.
// Implementations return an error only when no HTTP response was obtained at
// all; every status code is a valid Response.
type Transport interface {
	// Get issues a ranged GET. rangeSpec is the Range header value without
	// the "bytes=" prefix, e.g. "-30720" or "99-".
	Get(ctx context.Context, url, rangeSpec string) (*Response, error)

	// Head issues a HEAD, used to probe the remote size without consuming a
	// range fetch.
	Head(ctx context.Context, url string) (*Response, error)
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport returns a transport with a sane default timeout.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Get implements Transport.
func (t *HTTPTransport) Get(ctx context.Context, url, rangeSpec string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Range", "bytes="+rangeSpec)
	req.Header.Set("Cache-Control", "no-cache")
	return t.do(req)
}

// Head implements Transport.
func (t *HTTPTransport) Head(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	return t.do(req)
}

func (t *HTTPTransport) do(req *http.Request) (*Response, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// ProbeSize establishes the remote file size via HEAD. The response must
// carry Content-Length; anything else is treated as a malformed response.
func ProbeSize(ctx context.Context, t Transport, url string) (int64, http.Header, error) {
	resp, err := t.Head(ctx, url)
	if err != nil {
		return 0, nil, err
	}
	if resp.Status != http.StatusOK {
		return 0, resp.Header, fmt.Errorf("unexpected HEAD status %d", resp.Status)
	}
	cl := resp.Header.Get("Content-Length")
	size, ok := parseDigits(cl)
	if !ok {
		return 0, resp.Header, ErrMissingContentLength
	}
	return size, resp.Header, nil
}
