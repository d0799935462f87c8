package paper

import (
	"context"

	"github.com/kailas-cloud/paperdex/internal/domain"
	domidx "github.com/kailas-cloud/paperdex/internal/domain/index"
)

// mockEmbedder записывает последний запрошенный текст.
type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	lastText  string
	calls     int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastText = text
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}, TotalTokens: 3}, nil
}

type mockIndex struct {
	addFunc    func(ctx context.Context, entry domidx.Entry) error
	getFunc    func(ctx context.Context, id string) (domidx.Entry, error)
	listFunc   func(ctx context.Context) []domidx.Entry
	deleteFunc func(ctx context.Context, id string) (bool, error)
	countFunc  func(ctx context.Context) int

	added   []domidx.Entry
	deleted []string
}

func (m *mockIndex) Add(ctx context.Context, entry domidx.Entry) error {
	m.added = append(m.added, entry)
	if m.addFunc != nil {
		return m.addFunc(ctx, entry)
	}
	return nil
}

func (m *mockIndex) Get(ctx context.Context, id string) (domidx.Entry, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domidx.Entry{}, domain.ErrNotFound
}

func (m *mockIndex) List(ctx context.Context) []domidx.Entry {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil
}

func (m *mockIndex) Delete(ctx context.Context, id string) (bool, error) {
	m.deleted = append(m.deleted, id)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return true, nil
}

func (m *mockIndex) Count(ctx context.Context) int {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0
}
