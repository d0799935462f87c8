package search

// Hit is a single search result: a read-only projection of a stored entry.
type Hit struct {
	id     string
	score  float64
	fields map[string]string
}

// NewHit creates a search hit.
func NewHit(id string, score float64, fields map[string]string) Hit {
	return Hit{id: id, score: score, fields: fields}
}

// ID returns the entry identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the similarity score under the collection metric.
func (h *Hit) Score() float64 { return h.score }

// Fields returns the stored metadata fields.
func (h *Hit) Fields() map[string]string { return h.fields }
