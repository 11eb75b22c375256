package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SearchQuery is the normalised input of a single catalog search.
type SearchQuery struct {
	Keywords string
	Analyst  string // "" when no analyst filter was requested
	Limit    int    // 0 means unbounded
}

// ResultRecord is one catalog entry parsed from the results page.
type ResultRecord struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Analysts []string `json:"analysts"`
}

// SearchResult is the outcome of a search. Records keeps page order.
type SearchResult struct {
	Query     SearchQuery
	Records   []ResultRecord
	SourceURL string
}

// Extraction is what a ResultExtractor produced from one page.
type Extraction struct {
	Records  []ResultRecord
	Examined int // result rows looked at
	Skipped  int // rows dropped for missing markers
}

// Page is a fetched results page.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Keywords holds search terms as delivered by a platform, which may send
// either a single string or a list of strings.
type Keywords []string

// UnmarshalJSON accepts a JSON string, an array of strings or null.
func (k *Keywords) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*k = Keywords{single}
		return nil
	}

	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return fmt.Errorf("keywords must be a string or a list of strings: %w", err)
	}
	*k = terms
	return nil
}

// Join returns the terms joined by single spaces, in order.
func (k Keywords) Join() string {
	return strings.Join(k, " ")
}
