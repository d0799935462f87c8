package paperdex

import (
	"context"
	"fmt"
	"time"

	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	"github.com/kailas-cloud/paperdex/internal/domain/search"
	queryuc "github.com/kailas-cloud/paperdex/internal/usecase/query"
)

// Search embeds the query, ranks stored papers by similarity and, when
// a generator is configured, attaches a relevance explanation to every
// hit. A failed explanation degrades to fallback text instead of
// failing the whole search.
func (c *Client) Search(ctx context.Context, q SearchQuery) (_ []SearchMatch, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	topK := q.TopK
	if topK == 0 {
		topK = DefaultTopK
	}

	filter, err := buildFilter(q.Filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", ErrValidation, err)
	}

	explain := c.explainOn
	if q.Explain != nil {
		explain = *q.Explain && c.explainOn
	}

	matches, err := c.querySvc.Search(ctx, queryuc.Input{
		Query:   q.Query,
		TopK:    topK,
		Filter:  filter,
		Explain: explain,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]SearchMatch, len(matches))
	for i := range matches {
		out[i] = fromInternalMatch(&matches[i])
	}
	return out, nil
}

func buildFilter(filters map[string]string) (search.Filter, error) {
	if len(filters) == 0 {
		return search.Filter{}, nil
	}
	conditions := make([]search.Condition, 0, len(filters))
	for k, v := range filters {
		conditions = append(conditions, search.Eq(k, v))
	}
	return search.NewFilter(conditions...)
}

func fromInternalMatch(m *queryuc.Match) SearchMatch {
	fields := m.Hit.Fields()

	extra := make(map[string]string)
	for k, v := range fields {
		switch k {
		case "title", "summary", "keywords", "content_snippet", "full_text_length":
		default:
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		extra = nil
	}

	keywords := dompaper.SplitKeywords(fields["keywords"])
	if keywords == nil {
		keywords = []string{}
	}

	return SearchMatch{
		ID:          m.Hit.ID(),
		Score:       m.Hit.Score(),
		Title:       fields["title"],
		Summary:     fields["summary"],
		Keywords:    keywords,
		Snippet:     fields["content_snippet"],
		Extra:       extra,
		Explanation: m.Explanation,
	}
}
