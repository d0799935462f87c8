package paperdex

import "context"

// Embedder converts text to vector embeddings. Required.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces text completions for relevance explanations.
// Optional — search works without it, results just have no explanations.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int) (GenerationResult, error)
}

// GenerationResult carries the completion text and token counts.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
