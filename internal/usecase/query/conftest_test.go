package query

import (
	"context"
	"sync"

	"github.com/kailas-cloud/paperdex/internal/domain"
	"github.com/kailas-cloud/paperdex/internal/domain/search"
)

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
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

type mockSearcher struct {
	searchFunc func(ctx context.Context, vector []float32, k int, f search.Filter) ([]search.Hit, error)
	lastK      int
	lastVector []float32
}

func (m *mockSearcher) Search(
	ctx context.Context, vector []float32, k int, f search.Filter,
) ([]search.Hit, error) {
	m.lastK = k
	m.lastVector = vector
	if m.searchFunc != nil {
		return m.searchFunc(ctx, vector, k, f)
	}
	return nil, nil
}

// mockExplainer потокобезопасен: explainAll зовёт его из нескольких горутин.
type mockExplainer struct {
	explainFunc func(ctx context.Context, query, title, summary string, keywords []string) (string, error)

	mu          sync.Mutex
	calls       int
	inFlight    int
	maxObserved int
}

func (m *mockExplainer) Explain(
	ctx context.Context, query, title, summary string, keywords []string,
) (string, error) {
	m.mu.Lock()
	m.calls++
	m.inFlight++
	if m.inFlight > m.maxObserved {
		m.maxObserved = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.explainFunc != nil {
		return m.explainFunc(ctx, query, title, summary, keywords)
	}
	return "explanation for " + title, nil
}
