package repository

import (
	"io"
	"net/url"

	"github.com/user/catalog-webhook/internal/entity"
)

// ResultExtractor turns a results page into ordered result records.
type ResultExtractor interface {
	// Extract parses r and returns at most limit records (0 = all) in
	// document order. Relative links are resolved against base.
	// Rows that do not match the expected markup are skipped, not fatal.
	Extract(base *url.URL, r io.Reader, limit int) (*entity.Extraction, error)
}
