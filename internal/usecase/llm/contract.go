package llm

import (
	"context"

	"github.com/kailas-cloud/paperdex/internal/domain"
)

// Generator produces text completions.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int) (domain.GenerationResult, error)
}
