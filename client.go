package paperdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdex/internal/db"
	dbRedis "github.com/kailas-cloud/paperdex/internal/db/redis"
	"github.com/kailas-cloud/paperdex/internal/domain"
	domidx "github.com/kailas-cloud/paperdex/internal/domain/index"
	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	"github.com/kailas-cloud/paperdex/internal/index"
	indexrepo "github.com/kailas-cloud/paperdex/internal/repository/index"
	healthuc "github.com/kailas-cloud/paperdex/internal/usecase/health"
	llmuc "github.com/kailas-cloud/paperdex/internal/usecase/llm"
	paperuc "github.com/kailas-cloud/paperdex/internal/usecase/paper"
	queryuc "github.com/kailas-cloud/paperdex/internal/usecase/query"
	usageuc "github.com/kailas-cloud/paperdex/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCollection       = "ml_papers"
	defaultDimensions       = 384
	defaultMetric           = "cosine"
)

// Внутренние интерфейсы для подмены в тестах.
type paperUseCase interface {
	AddPaper(ctx context.Context, in paperuc.AddPaperInput) (dompaper.Paper, error)
	GetPaper(ctx context.Context, id string) (dompaper.Paper, error)
	ListPapers(ctx context.Context) ([]dompaper.Paper, error)
	DeletePaper(ctx context.Context, id string) error
	Count(ctx context.Context) int
}

type queryUseCase interface {
	Search(ctx context.Context, in queryuc.Input) ([]queryuc.Match, error)
}

// Client is the paperdex SDK entry point.
type Client struct {
	store     db.Store
	paperSvc  paperUseCase
	querySvc  queryUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	explainOn bool
	obs       *observer
}

// New creates a paperdex Client and connects to the database.
// The provided context covers the initial readiness check and the
// index rehydration from the store.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		collection: defaultCollection,
		dimensions: defaultDimensions,
		metric:     defaultMetric,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("paperdex: database address required (use WithRedis)")
	}

	metric, err := domidx.ParseMetric(cfg.metric)
	if err != nil {
		return nil, fmt.Errorf("paperdex: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("paperdex: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("paperdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return wireClient(ctx, store, cfg, metric, obs)
}

func wireClient(
	ctx context.Context, store db.Store, cfg *clientConfig, metric domidx.Metric, obs *observer,
) (*Client, error) {
	// Internal services log through zap; the SDK keeps its own slog
	// observer instead, so they get a nop logger.
	nop := zap.NewNop()

	engine, err := index.Open(ctx, indexrepo.New(store), cfg.collection, cfg.dimensions, metric, nop)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("paperdex: open index: %w", err)
	}

	// Embedder: noop если не задан — операции вернут ошибку при вызове.
	var domEmb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}
	if cfg.normalize == nil || *cfg.normalize {
		domEmb = domain.NewNormalizedEmbedder(domEmb)
	}

	var explainer queryuc.Explainer
	explainOn := false
	if cfg.generator != nil {
		explainer = llmuc.New(&generatorAdapter{inner: cfg.generator})
		explainOn = true
	}

	paperSvc := paperuc.New(domEmb, engine, nop)
	querySvc := queryuc.New(domEmb, engine, explainer, nop).
		WithExplainTimeout(cfg.explainTimeout).
		WithMaxConcurrent(cfg.maxConcurrent)

	healthSvc := healthuc.New(store, nil, nil)
	usageSvc := usageuc.New(nil) // nil = unlimited mode (no budget tracking in SDK)

	return &Client{
		store:     store,
		paperSvc:  paperSvc,
		querySvc:  querySvc,
		healthSvc: healthSvc,
		usageSvc:  usageSvc,
		explainOn: explainOn,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// generatorAdapter wraps public Generator to satisfy the llm contract.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(
	ctx context.Context, system, prompt string, maxTokens int,
) (domain.GenerationResult, error) {
	r, err := a.inner.Generate(ctx, system, prompt, maxTokens)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return domain.GenerationResult{
		Text:             r.Text,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"paperdex: embedder not configured (use WithEmbedder)",
	)
}
