package tail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportGet(t *testing.T) {
	var gotRange, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		gotCache = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Range", "bytes 5-9/10")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("tail!"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Get(context.Background(), srv.URL, "5-")
	require.NoError(t, err)

	assert.Equal(t, "bytes=5-", gotRange)
	assert.Equal(t, "no-cache", gotCache)
	assert.Equal(t, http.StatusPartialContent, resp.Status)
	assert.Equal(t, "tail!", string(resp.Body))
	assert.Equal(t, "bytes 5-9/10", resp.Header.Get("Content-Range"))
}

func TestHTTPTransportErrorStatusIsStillAResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "bytes */3")
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Get(context.Background(), srv.URL, "99-")
	require.NoError(t, err, "a 416 is a classified outcome, not a transport failure")
	assert.Equal(t, 416, resp.Status)
}

func TestHTTPTransportConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening any more

	tr := NewHTTPTransport()
	_, err := tr.Get(context.Background(), srv.URL, "-100")
	require.Error(t, err)
}

func TestProbeSize(t *testing.T) {
	t.Run("reads Content-Length from HEAD", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodHead, r.Method)
			w.Header().Set("Content-Length", "1234")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		size, _, err := ProbeSize(context.Background(), NewHTTPTransport(), srv.URL)
		require.NoError(t, err)
		assert.EqualValues(t, 1234, size)
	})

	t.Run("missing Content-Length is a malformed response", func(t *testing.T) {
		headScripted := &headOnlyTransport{resp: &Response{Status: 200, Header: http.Header{}}}
		_, _, err := ProbeSize(context.Background(), headScripted, "http://example.com/log")
		require.ErrorIs(t, err, ErrMissingContentLength)
	})

	t.Run("non-200 HEAD fails", func(t *testing.T) {
		headScripted := &headOnlyTransport{resp: &Response{Status: 404, Header: http.Header{}}}
		_, _, err := ProbeSize(context.Background(), headScripted, "http://example.com/log")
		require.EqualError(t, err, "unexpected HEAD status 404")
	})
}

type headOnlyTransport struct {
	resp *Response
}

func (h *headOnlyTransport) Get(context.Context, string, string) (*Response, error) {
	return nil, nil
}

func (h *headOnlyTransport) Head(context.Context, string) (*Response, error) {
	return h.resp, nil
}
