package domain

import "context"

// Generator is the shared text generation contract (summaries, keywords,
// relevance explanations).
type Generator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int) (GenerationResult, error)
}

// GenerationResult carries the generated text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
