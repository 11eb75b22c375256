package repository

import (
	"context"

	"github.com/user/catalog-webhook/internal/entity"
)

// PageFetcher defines the contract for retrieving a search results page.
type PageFetcher interface {
	// Fetch issues a GET for url and returns the page body.
	// Failures wrap ErrFetchFailed.
	Fetch(ctx context.Context, url string) (*entity.Page, error)
}
