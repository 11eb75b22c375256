package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/user/catalog-webhook/internal/entity"
)

// ErrNotMyIntent is returned when a conversational request carries an
// action this service does not handle.
var ErrNotMyIntent = errors.New("request is not a catalog search intent")

// SearchAction is the conversational action handled by this service.
const SearchAction = "gartnerSearchRequest"

// ConversationalRequest is the fulfillment webhook body sent by the
// conversational platform.
type ConversationalRequest struct {
	ID     string                `json:"id,omitempty"`
	Result *ConversationalResult `json:"result"`
}

type ConversationalResult struct {
	Action        string                    `json:"action"`
	ResolvedQuery string                    `json:"resolvedQuery,omitempty"`
	Parameters    *ConversationalParameters `json:"parameters"`
}

type ConversationalParameters struct {
	Keywords entity.Keywords `json:"keywords"`
	Analyst  string          `json:"analyst"`
	Count    Count           `json:"count"`
}

// Count is a result count sent either as a JSON number or a numeric string.
// Values that cannot be read as a number decode to zero (unset).
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*c = countFromFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = countFromFloat(n)
	return nil
}

// countFromFloat truncates n, treating values outside the int32 range as unset.
func countFromFloat(n float64) Count {
	if math.IsNaN(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return 0
	}
	return Count(n)
}

// SearchQuery translates the request into search parameters. A missing or
// non-positive count uses defaultCount.
func (r *ConversationalRequest) SearchQuery(defaultCount int) (entity.SearchQuery, error) {
	if r.Result == nil {
		return entity.SearchQuery{}, entity.ErrMalformedRequest
	}
	if r.Result.Action != SearchAction {
		return entity.SearchQuery{}, ErrNotMyIntent
	}
	p := r.Result.Parameters
	if p == nil {
		return entity.SearchQuery{}, entity.ErrMalformedRequest
	}
	keywords := p.Keywords.Join()
	if strings.TrimSpace(keywords) == "" {
		return entity.SearchQuery{}, entity.ErrMalformedRequest
	}

	limit := int(p.Count)
	if limit <= 0 {
		limit = defaultCount
	}
	return entity.SearchQuery{Keywords: keywords, Analyst: p.Analyst, Limit: limit}, nil
}
