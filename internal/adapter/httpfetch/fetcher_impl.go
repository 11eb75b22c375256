package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-webhook/internal/entity"
	"github.com/user/catalog-webhook/internal/proxy"
	"github.com/user/catalog-webhook/internal/repository"
)

// maxBodyBytes caps how much of a results page is read.
const maxBodyBytes = 5 << 20

// HTTPFetcher retrieves results pages with a plain HTTP client.
type HTTPFetcher struct {
	client *http.Client
	agents *proxy.Manager
	logger *zap.Logger
}

// NewHTTPFetcher creates a fetcher whose requests are bounded by timeout.
// Outbound proxies and user agents are rotated through agents.
func NewHTTPFetcher(timeout time.Duration, agents *proxy.Manager, logger *zap.Logger) *HTTPFetcher {
	transport := &http.Transport{
		Proxy: agents.ProxyFunc,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &HTTPFetcher{
		client: &http.Client{Transport: transport, Timeout: timeout},
		agents: agents,
		logger: logger,
	}
}

// Fetch issues a GET for url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", repository.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.agents.GetUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %w: %w", repository.ErrFetchFailed, repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", repository.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %w: received status code %d", repository.ErrFetchFailed, repository.ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %w: %w", repository.ErrFetchFailed, repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: read body: %w", repository.ErrFetchFailed, err)
	}

	f.logger.Debug("fetched results page",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	return &entity.Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ repository.PageFetcher = (*HTTPFetcher)(nil)
