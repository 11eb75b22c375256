package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-webhook/internal/entity"
	"github.com/user/catalog-webhook/internal/repository"
	"github.com/user/catalog-webhook/pkg/metrics"
)

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, q entity.SearchQuery) (*entity.SearchResult, error)
}

type searchUseCase struct {
	builder   *QueryBuilder
	fetcher   repository.PageFetcher
	extractor repository.ResultExtractor
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewSearchUseCase creates the search pipeline.
func NewSearchUseCase(
	builder *QueryBuilder,
	fetcher repository.PageFetcher,
	extractor repository.ResultExtractor,
	m *metrics.Metrics,
	logger *zap.Logger,
) Searcher {
	return &searchUseCase{
		builder:   builder,
		fetcher:   fetcher,
		extractor: extractor,
		metrics:   m,
		logger:    logger,
	}
}

// Search builds the query URL, fetches the results page and extracts at
// most q.Limit records from it.
func (uc *searchUseCase) Search(ctx context.Context, q entity.SearchQuery) (*entity.SearchResult, error) {
	if q.Limit < 0 {
		q.Limit = 0
	}
	searchURL := uc.builder.URL(ComposeSearchString(q.Keywords, q.Analyst))
	sourceURL := searchURL.String()

	uc.logger.Info("Searching catalog",
		zap.String("keywords", q.Keywords),
		zap.String("analyst", q.Analyst),
		zap.Int("limit", q.Limit),
		zap.String("url", sourceURL),
	)

	startTime := time.Now()
	page, err := uc.fetcher.Fetch(ctx, sourceURL)
	uc.metrics.FetchDuration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		uc.metrics.SearchesTotal.WithLabelValues(fetchOutcome(err)).Inc()
		uc.logger.Error("Fetching results page failed", zap.String("url", sourceURL), zap.Error(err))
		return nil, fmt.Errorf("search %q: %w", sourceURL, err)
	}

	base := searchURL
	if parsed, err := url.Parse(page.URL); err == nil && parsed.Host != "" {
		base = parsed
	}

	extraction, err := uc.extractor.Extract(base, bytes.NewReader(page.Body), q.Limit)
	if err != nil {
		uc.metrics.SearchesTotal.WithLabelValues("extract").Inc()
		return nil, fmt.Errorf("extract results from %q: %w", sourceURL, err)
	}

	uc.metrics.RowsSkippedTotal.Add(float64(extraction.Skipped))
	uc.metrics.RecordsReturned.Observe(float64(len(extraction.Records)))
	outcome := "success"
	if len(extraction.Records) == 0 {
		outcome = "empty"
	}
	uc.metrics.SearchesTotal.WithLabelValues(outcome).Inc()

	if extraction.Skipped > 0 {
		uc.logger.Warn("Result rows did not match expected markup",
			zap.String("url", sourceURL),
			zap.Int("skipped", extraction.Skipped),
			zap.Int("examined", extraction.Examined),
		)
	}
	uc.logger.Info("Search complete",
		zap.String("url", sourceURL),
		zap.Int("records", len(extraction.Records)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return &entity.SearchResult{
		Query:     q,
		Records:   extraction.Records,
		SourceURL: sourceURL,
	}, nil
}

func fetchOutcome(err error) string {
	switch {
	case errors.Is(err, repository.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, repository.ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, repository.ErrUpstreamStatus):
		return "status"
	default:
		return "fetch"
	}
}
