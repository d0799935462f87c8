package search

import (
	"fmt"
	"strings"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	// MinTopK and MaxTopK bound top_k. Out-of-range values are rejected,
	// never clamped.
	MinTopK = 1
	MaxTopK = 20
)

// Request is a validated search query.
type Request struct {
	query  string
	topK   int
	filter Filter
}

// NewRequest validates and creates a search request. The query must be
// non-empty after trimming but is embedded as given.
func NewRequest(query string, topK int, filter Filter) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("query must not be empty")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if topK < MinTopK || topK > MaxTopK {
		return Request{}, fmt.Errorf("top_k must be between %d and %d", MinTopK, MaxTopK)
	}

	return Request{query: query, topK: topK, filter: filter}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// TopK returns the requested number of results.
func (r *Request) TopK() int { return r.topK }

// Filter returns the metadata pre-filter.
func (r *Request) Filter() Filter { return r.filter }
