package paper

import (
	"context"

	"github.com/kailas-cloud/paperdex/internal/domain"
	domidx "github.com/kailas-cloud/paperdex/internal/domain/index"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index is the similarity index the service stores papers in.
type Index interface {
	Add(ctx context.Context, entry domidx.Entry) error
	Get(ctx context.Context, id string) (domidx.Entry, error)
	List(ctx context.Context) []domidx.Entry
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) int
}
