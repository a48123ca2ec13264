package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetch(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	f := New(Options{Timeout: 5 * time.Second, UserAgent: "test-agent/1.0"}, testLogger())

	page, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, server.URL, page.URL)
	assert.Contains(t, page.Body, "ok")
	assert.Equal(t, "test-agent/1.0", gotUserAgent)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	f := New(Options{Timeout: 5 * time.Second}, testLogger())

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	f := New(Options{Timeout: 50 * time.Millisecond}, testLogger())

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := New(Options{Timeout: 2 * time.Second}, testLogger())

	_, err := f.Fetch(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestFetch_DNSFailure(t *testing.T) {
	f := New(Options{Timeout: 2 * time.Second}, testLogger())

	_, err := f.Fetch(context.Background(), "http://definitely-not-a-real-host.invalid/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDNS)
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("landed"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := New(Options{Timeout: 5 * time.Second}, testLogger())

	page, err := f.Fetch(context.Background(), server.URL+"/old")
	require.NoError(t, err)
	assert.Contains(t, page.Body, "landed")
}
