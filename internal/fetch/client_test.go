// ===================================
// File: internal/fetch/client_test.go
// ===================================
package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestClientClassifiesStatuses(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   FailKind
	}{
		{"ok", http.StatusOK, `{"data":[]}`, FailNone},
		{"rate limited", http.StatusTooManyRequests, "", FailRateLimited},
		{"server error", http.StatusServiceUnavailable, "", FailServer},
		{"not found", http.StatusNotFound, "", FailMalformed},
		{"forbidden", http.StatusForbidden, "", FailMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(zaptest.NewLogger(t), 0)
			out := c.Get(context.Background(), srv.URL, time.Second, nil)
			assert.Equal(t, tc.kind, out.Kind)
			assert.Equal(t, tc.status, out.Status)
		})
	}
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	c := NewClient(zaptest.NewLogger(t), 0)
	out := c.Get(context.Background(), srv.URL, 30*time.Millisecond, nil)
	assert.Equal(t, FailTimeout, out.Kind)
}

func TestClientCallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(zaptest.NewLogger(t), 0)
	out := c.Get(ctx, srv.URL, time.Second, nil)
	assert.Equal(t, FailCanceled, out.Kind, "a dead caller is not a slow candidate")
}

func TestClientConnectionRefusedIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(zaptest.NewLogger(t), 0)
	out := c.Get(context.Background(), url, time.Second, nil)
	assert.Equal(t, FailBlocked, out.Kind)
}

func TestClientEmptyBodyIsEmptyOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("  \n"))
	}))
	defer srv.Close()

	c := NewClient(zaptest.NewLogger(t), 0)
	out := c.Get(context.Background(), srv.URL, time.Second, nil)
	assert.True(t, out.Empty())
	assert.False(t, out.OK())
}

func TestClientOversizedBodyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	c := NewClient(zaptest.NewLogger(t), 1024)
	out := c.Get(context.Background(), srv.URL, time.Second, nil)
	assert.Equal(t, FailMalformed, out.Kind)
}

func TestClientSendsHeaders(t *testing.T) {
	var gotKey, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(zaptest.NewLogger(t), 0)
	out := c.Get(context.Background(), srv.URL, time.Second, map[string]string{"x-api-key": "secret"})
	require.Equal(t, FailNone, out.Kind)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClientPostSendsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody = make([]byte, r.ContentLength)
		_, _ = r.Body.Read(gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(zaptest.NewLogger(t), 0)
	out := c.Post(context.Background(), srv.URL, []byte(`{"q":1}`), time.Second, nil)
	require.True(t, out.OK())
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"q":1}`, string(gotBody))
}
