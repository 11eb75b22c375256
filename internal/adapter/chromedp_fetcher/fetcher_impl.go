package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/catalog-webhook/internal/entity"
	"github.com/user/catalog-webhook/internal/proxy"
	"github.com/user/catalog-webhook/internal/repository"
)

// ChromedpFetcher renders results pages in headless Chrome, for catalog
// pages that build their result list with script.
type ChromedpFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	agents      *proxy.Manager
	logger      *zap.Logger
}

// NewChromedpFetcher starts a browser allocator shared by all fetches.
// The proxy is chosen once for the browser process; the user agent rotates
// per fetch. Call Close to release it.
func NewChromedpFetcher(pageLoadTimeout time.Duration, agents *proxy.Manager, logger *zap.Logger) *ChromedpFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(agents.GetUserAgent()),
	)
	if p := agents.GetProxy(); p != nil {
		opts = append(opts, chromedp.ProxyServer(p.String()))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpFetcher{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		timeout:     pageLoadTimeout,
		agents:      agents,
		logger:      logger,
	}
}

// Fetch navigates to url and returns the rendered document.
func (c *ChromedpFetcher) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	// A new tab per fetch; the browser process is shared.
	taskCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	// Stop the tab when the inbound request goes away.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		html      string
		docStatus atomic.Int64
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			docStatus.CompareAndSwap(0, resp.Response.Status)
		}
	})

	startTime := time.Now()
	err := chromedp.Run(taskCtx,
		emulation.SetUserAgentOverride(c.agents.GetUserAgent()),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %w", repository.ErrFetchFailed, repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", repository.ErrFetchFailed, err)
	}

	statusCode := docStatus.Load()
	if statusCode == 0 {
		statusCode = 200
	}
	if statusCode < 200 || statusCode > 299 {
		return nil, fmt.Errorf("%w: %w: received status code %d", repository.ErrFetchFailed, repository.ErrUpstreamStatus, statusCode)
	}

	c.logger.Debug("rendered results page",
		zap.String("url", url),
		zap.Int64("status", statusCode),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return &entity.Page{URL: url, StatusCode: int(statusCode), Body: []byte(html)}, nil
}

// Close shuts down the browser.
func (c *ChromedpFetcher) Close() {
	c.allocCancel()
}

var _ repository.PageFetcher = (*ChromedpFetcher)(nil)
