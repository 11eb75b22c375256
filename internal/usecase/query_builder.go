package usecase

import (
	"fmt"
	"net/url"
)

// AnyAnalyst is the analyst value platforms send when no filter is wanted.
const AnyAnalyst = "Any"

// ComposeSearchString appends an author clause to keywords when an analyst
// filter is requested. The analyst is not escaped.
func ComposeSearchString(keywords, analyst string) string {
	if analyst == "" || analyst == AnyAnalyst {
		return keywords
	}
	return keywords + " author:" + analyst
}

// QueryBuilder turns a search string into a catalog search URL.
type QueryBuilder struct {
	endpoint *url.URL
	param    string
}

// NewQueryBuilder validates endpoint and returns a builder that places the
// search string in the query parameter param.
func NewQueryBuilder(endpoint, param string) (*QueryBuilder, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid search endpoint %q: scheme and host are required", endpoint)
	}
	if param == "" {
		param = "keywords"
	}
	return &QueryBuilder{endpoint: u, param: param}, nil
}

// URL returns the search URL for searchString, form-encoded.
func (b *QueryBuilder) URL(searchString string) *url.URL {
	u := *b.endpoint
	q := u.Query()
	q.Set(b.param, searchString)
	u.RawQuery = q.Encode()
	return &u
}
