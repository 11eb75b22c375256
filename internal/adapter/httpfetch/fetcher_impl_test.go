package httpfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/catalog-webhook/internal/proxy"
	"github.com/user/catalog-webhook/internal/repository"
)

func newFetcher(t *testing.T, timeout time.Duration) *HTTPFetcher {
	t.Helper()
	agents, err := proxy.NewManager(nil, []string{"test-agent/1.0"})
	require.NoError(t, err)
	return NewHTTPFetcher(timeout, agents, zaptest.NewLogger(t))
}

func TestFetchSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	page, err := newFetcher(t, time.Second).Fetch(context.Background(), srv.URL+"/search?keywords=cloud")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, srv.URL+"/search?keywords=cloud", page.URL)
	assert.Contains(t, string(page.Body), "ok")
	assert.Equal(t, "test-agent/1.0", gotUA)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newFetcher(t, time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrFetchFailed)
	assert.ErrorIs(t, err, repository.ErrUpstreamStatus)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newFetcher(t, 50*time.Millisecond).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrFetchFailed)
	assert.ErrorIs(t, err, repository.ErrFetchTimeout)
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := newFetcher(t, time.Second).Fetch(context.Background(), addr)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrFetchFailed)
	assert.NotErrorIs(t, err, repository.ErrUpstreamStatus)
}
