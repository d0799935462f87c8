package domain

// KeyPrefix prefixes every key paperdex writes to the store.
const KeyPrefix = "paperdex:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model      string
	Dimensions int
	Metric     string
	Normalize  bool
}

// DefaultVectorConfig returns the default configuration tuned for
// all-MiniLM-L6-v2 behind an OpenAI-compatible inference server.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "all-MiniLM-L6-v2",
		Dimensions: 384,
		Metric:     "cosine",
		Normalize:  true,
	}
}
