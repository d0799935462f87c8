package index

import (
	"fmt"
	"regexp"
	"time"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxDimension bounds the vector dimension accepted at collection creation.
const MaxDimension = 8192

// Metric is the similarity metric fixed at collection creation.
type Metric string

const (
	// MetricCosine scores as 1 - cosine distance, in [-1, 1].
	MetricCosine Metric = "cosine"
	// MetricDot scores as the raw inner product.
	MetricDot Metric = "dot"
	// MetricL2 scores as negated Euclidean distance (0 is a perfect match).
	MetricL2 Metric = "l2"
)

// IsValid checks if the metric is supported.
func (m Metric) IsValid() bool {
	return m == MetricCosine || m == MetricDot || m == MetricL2
}

// ParseMetric validates a metric string from config or storage.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown similarity metric %q", s)
	}
	return m, nil
}

// Meta is the collection descriptor (immutable value object). Dimension and
// metric are fixed at creation and must match on every reopen.
type Meta struct {
	name      string
	dimension int
	metric    Metric
	createdAt int64
}

// NewMeta validates and creates a collection descriptor.
// Name: ^[a-zA-Z0-9_-]+$, 1-64 chars. Dimension: 1..8192.
func NewMeta(name string, dimension int, metric Metric) (Meta, error) {
	if name == "" {
		return Meta{}, fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return Meta{}, fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return Meta{}, fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	if dimension <= 0 || dimension > MaxDimension {
		return Meta{}, fmt.Errorf("dimension must be between 1 and %d", MaxDimension)
	}
	if !metric.IsValid() {
		return Meta{}, fmt.Errorf("unknown similarity metric %q", metric)
	}

	return Meta{
		name:      name,
		dimension: dimension,
		metric:    metric,
		createdAt: time.Now().UnixMilli(),
	}, nil
}

// ReconstructMeta creates a Meta without validation (storage hydration).
func ReconstructMeta(name string, dimension int, metric Metric, createdAt int64) Meta {
	return Meta{name: name, dimension: dimension, metric: metric, createdAt: createdAt}
}

// Name returns the collection name.
func (m Meta) Name() string { return m.name }

// Dimension returns the fixed vector dimension.
func (m Meta) Dimension() int { return m.dimension }

// Metric returns the fixed similarity metric.
func (m Meta) Metric() Metric { return m.metric }

// CreatedAt returns the creation timestamp in unix millis.
func (m Meta) CreatedAt() int64 { return m.createdAt }

// Entry is one stored (id, vector, fields) triple.
type Entry struct {
	id     string
	vector []float32
	fields map[string]string
}

// NewEntry validates and creates an Entry. Dimension checks against the
// collection happen in the engine, not here.
func NewEntry(id string, vector []float32, fields map[string]string) (Entry, error) {
	if id == "" {
		return Entry{}, fmt.Errorf("entry ID is required")
	}
	if len(vector) == 0 {
		return Entry{}, fmt.Errorf("entry vector is required")
	}
	return Entry{id: id, vector: cloneVector(vector), fields: cloneFields(fields)}, nil
}

// ReconstructEntry creates an Entry without validation (storage hydration).
func ReconstructEntry(id string, vector []float32, fields map[string]string) Entry {
	return Entry{id: id, vector: vector, fields: fields}
}

// ID returns the entry identifier.
func (e *Entry) ID() string { return e.id }

// Vector returns the stored embedding vector.
func (e *Entry) Vector() []float32 { return e.vector }

// Fields returns the stored metadata fields.
func (e *Entry) Fields() map[string]string { return e.fields }

func cloneVector(v []float32) []float32 {
	c := make([]float32, len(v))
	copy(c, v)
	return c
}

func cloneFields(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
