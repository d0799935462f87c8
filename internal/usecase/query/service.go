// Package query orchestrates retrieval: it embeds the query, ranks stored
// papers, and optionally asks the LLM why each hit is relevant.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdex/internal/domain"
	"github.com/kailas-cloud/paperdex/internal/domain/paper"
	"github.com/kailas-cloud/paperdex/internal/domain/search"
	"github.com/kailas-cloud/paperdex/internal/metrics"
	"github.com/kailas-cloud/paperdex/internal/usecase/llm"
)

// Defaults for explanation generation.
const (
	DefaultExplainTimeout = 15 * time.Second
	DefaultMaxConcurrent  = 4
)

// Input is a raw search request before validation.
type Input struct {
	Query   string
	TopK    int
	Filter  search.Filter
	Explain bool
}

// Match is a ranked hit with its relevance explanation. Explanation is
// empty when explanations were not requested.
type Match struct {
	Hit         search.Hit
	Explanation string
}

// Service runs retrieval with optional per-hit explanations.
type Service struct {
	embedder       Embedder
	searcher       Searcher
	explainer      Explainer
	explainTimeout time.Duration
	maxConcurrent  int
	logger         *zap.Logger
}

// New creates a query service.
func New(embedder Embedder, searcher Searcher, explainer Explainer, logger *zap.Logger) *Service {
	return &Service{
		embedder:       embedder,
		searcher:       searcher,
		explainer:      explainer,
		explainTimeout: DefaultExplainTimeout,
		maxConcurrent:  DefaultMaxConcurrent,
		logger:         logger,
	}
}

// WithExplainTimeout configures the per-explanation timeout.
func (s *Service) WithExplainTimeout(d time.Duration) *Service {
	if d > 0 {
		s.explainTimeout = d
	}
	return s
}

// WithMaxConcurrent configures the explanation parallelism.
func (s *Service) WithMaxConcurrent(n int) *Service {
	if n > 0 {
		s.maxConcurrent = n
	}
	return s
}

// Search embeds the query, ranks stored papers and, when requested,
// attaches an explanation to every hit. Embedding and search failures
// abort the request; a failed explanation degrades to fallback text so
// one slow LLM call never sinks the whole response.
func (s *Service) Search(ctx context.Context, in Input) ([]Match, error) {
	req, err := search.NewRequest(in.Query, in.TopK, in.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	embResult, err := s.embedder.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)

	hits, err := s.searcher.Search(ctx, embResult.Embedding, req.TopK(), req.Filter())
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	matches := make([]Match, len(hits))
	for i := range hits {
		matches[i] = Match{Hit: hits[i]}
	}

	if in.Explain && len(matches) > 0 {
		s.explainAll(ctx, req.Query(), matches)
	}

	s.logger.Debug("Search completed",
		zap.Int("top_k", req.TopK()),
		zap.Int("hits", len(matches)),
		zap.Bool("explain", in.Explain),
	)
	return matches, nil
}

// explainAll fills Explanation for every match, at most maxConcurrent
// LLM calls in flight. Order is preserved: each goroutine writes only
// its own slot.
func (s *Service) explainAll(ctx context.Context, query string, matches []Match) {
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i := range matches {
		wg.Add(1)
		go func(m *Match) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				m.Explanation = llm.FallbackExplanation
				return
			}

			m.Explanation = s.explainOne(ctx, query, &m.Hit)
		}(&matches[i])
	}

	wg.Wait()
}

func (s *Service) explainOne(ctx context.Context, query string, hit *search.Hit) string {
	ctx, cancel := context.WithTimeout(ctx, s.explainTimeout)
	defer cancel()

	fields := hit.Fields()
	explanation, err := s.explainer.Explain(
		ctx, query,
		fields["title"], fields["summary"],
		paper.SplitKeywords(fields["keywords"]),
	)
	if err != nil {
		metrics.GenerationFallbacksTotal.Inc()
		s.logger.Warn("Explanation failed, using fallback",
			zap.String("paper_id", hit.ID()),
			zap.Error(err),
		)
		return llm.FallbackExplanation
	}
	return explanation
}
