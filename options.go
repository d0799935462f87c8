package paperdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string

	embedder  Embedder
	generator Generator

	collection string
	dimensions int
	metric     string
	normalize  *bool

	explainTimeout time.Duration
	maxConcurrent  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithUsername sets the database ACL username.
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the LLM provider used for relevance explanations.
// Optional — without it search results carry no explanations.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithCollection sets the collection name. Default: "ml_papers".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithDimensions sets the vector dimension.
// Defaults to 384 (all-MiniLM-L6-v2).
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithMetric sets the similarity metric: "cosine" (default), "dot" or "l2".
func WithMetric(metric string) Option {
	return optionFunc(func(c *clientConfig) {
		c.metric = metric
	})
}

// WithoutNormalization disables unit-length scaling of embeddings.
// Only meaningful with the dot metric; cosine is scale-invariant anyway.
func WithoutNormalization() Option {
	return optionFunc(func(c *clientConfig) {
		f := false
		c.normalize = &f
	})
}

// WithExplainTimeout bounds each explanation call. Default: 15s.
func WithExplainTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.explainTimeout = d
	})
}

// WithMaxConcurrent caps the number of explanation calls in flight. Default: 4.
func WithMaxConcurrent(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConcurrent = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
