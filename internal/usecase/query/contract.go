package query

import (
	"context"

	"github.com/kailas-cloud/paperdex/internal/domain"
	"github.com/kailas-cloud/paperdex/internal/domain/search"
)

// Embedder vectorizes the search query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher ranks stored papers against a query vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int, f search.Filter) ([]search.Hit, error)
}

// Explainer produces a relevance explanation for a single hit.
type Explainer interface {
	Explain(ctx context.Context, query, title, summary string, keywords []string) (string, error)
}
