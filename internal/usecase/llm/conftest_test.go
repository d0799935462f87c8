package llm

import (
	"context"

	"github.com/kailas-cloud/paperdex/internal/domain"
)

// mockGenerator implements Generator for tests.
type mockGenerator struct {
	generateFn func(ctx context.Context, system, prompt string, maxTokens int) (domain.GenerationResult, error)
	calls      int
	lastSystem string
	lastPrompt string
	lastMax    int
}

func (m *mockGenerator) Generate(
	ctx context.Context, system, prompt string, maxTokens int,
) (domain.GenerationResult, error) {
	m.calls++
	m.lastSystem = system
	m.lastPrompt = prompt
	m.lastMax = maxTokens
	if m.generateFn != nil {
		return m.generateFn(ctx, system, prompt, maxTokens)
	}
	return domain.GenerationResult{Text: "generated"}, nil
}
