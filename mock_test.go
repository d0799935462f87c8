package paperdex

import (
	"context"

	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	domusage "github.com/kailas-cloud/paperdex/internal/domain/usage"
	healthuc "github.com/kailas-cloud/paperdex/internal/usecase/health"
	paperuc "github.com/kailas-cloud/paperdex/internal/usecase/paper"
	queryuc "github.com/kailas-cloud/paperdex/internal/usecase/query"
)

// --- paperUseCase mock ---

type mockPaperUC struct {
	addFn    func(ctx context.Context, in paperuc.AddPaperInput) (dompaper.Paper, error)
	getFn    func(ctx context.Context, id string) (dompaper.Paper, error)
	listFn   func(ctx context.Context) ([]dompaper.Paper, error)
	deleteFn func(ctx context.Context, id string) error
	countFn  func(ctx context.Context) int
}

func (m *mockPaperUC) AddPaper(ctx context.Context, in paperuc.AddPaperInput) (dompaper.Paper, error) {
	return m.addFn(ctx, in)
}

func (m *mockPaperUC) GetPaper(ctx context.Context, id string) (dompaper.Paper, error) {
	return m.getFn(ctx, id)
}

func (m *mockPaperUC) ListPapers(ctx context.Context) ([]dompaper.Paper, error) {
	return m.listFn(ctx)
}

func (m *mockPaperUC) DeletePaper(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockPaperUC) Count(ctx context.Context) int {
	return m.countFn(ctx)
}

// --- queryUseCase mock ---

type mockQueryUC struct {
	searchFn func(ctx context.Context, in queryuc.Input) ([]queryuc.Match, error)
}

func (m *mockQueryUC) Search(ctx context.Context, in queryuc.Input) ([]queryuc.Match, error) {
	return m.searchFn(ctx, in)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}

// --- usageUseCase mock ---

type mockUsageUC struct {
	reportFn func(ctx context.Context, period domusage.Period) domusage.Report
}

func (m *mockUsageUC) GetReport(ctx context.Context, period domusage.Period) domusage.Report {
	return m.reportFn(ctx, period)
}

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// --- Generator mock ---

type mockGenerator struct {
	fn func(ctx context.Context, system, prompt string, maxTokens int) (GenerationResult, error)
}

func (m *mockGenerator) Generate(
	ctx context.Context, system, prompt string, maxTokens int,
) (GenerationResult, error) {
	return m.fn(ctx, system, prompt, maxTokens)
}
