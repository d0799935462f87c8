package ingest

import (
	"context"
	"io"

	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	"github.com/kailas-cloud/paperdex/internal/usecase/paper"
)

type mockExtractor struct {
	extractFunc  func(ctx context.Context, r io.Reader, filename string) (string, error)
	lastFilename string
	calls        int
}

func (m *mockExtractor) ExtractText(ctx context.Context, r io.Reader, filename string) (string, error) {
	m.calls++
	m.lastFilename = filename
	if m.extractFunc != nil {
		return m.extractFunc(ctx, r, filename)
	}
	return "", nil
}

type mockSummarizer struct {
	summarizeFunc func(ctx context.Context, text string, maxSentences int) (string, error)
	keywordsFunc  func(ctx context.Context, text string, count int) ([]string, error)

	summarizeCalls int
	keywordsCalls  int
	lastSentences  int
	lastCount      int
}

func (m *mockSummarizer) Summarize(ctx context.Context, text string, maxSentences int) (string, error) {
	m.summarizeCalls++
	m.lastSentences = maxSentences
	if m.summarizeFunc != nil {
		return m.summarizeFunc(ctx, text, maxSentences)
	}
	return "A summary.", nil
}

func (m *mockSummarizer) Keywords(ctx context.Context, text string, count int) ([]string, error) {
	m.keywordsCalls++
	m.lastCount = count
	if m.keywordsFunc != nil {
		return m.keywordsFunc(ctx, text, count)
	}
	return []string{"nlp", "ml"}, nil
}

type mockPaperAdder struct {
	addFunc   func(ctx context.Context, in paper.AddPaperInput) (dompaper.Paper, error)
	lastInput paper.AddPaperInput
	calls     int
}

func (m *mockPaperAdder) AddPaper(ctx context.Context, in paper.AddPaperInput) (dompaper.Paper, error) {
	m.calls++
	m.lastInput = in
	if m.addFunc != nil {
		return m.addFunc(ctx, in)
	}
	return dompaper.Reconstruct(
		"paper-1", in.Title, in.Summary, in.Keywords,
		in.Snippet, in.FullTextLength, in.Extra, nil,
	), nil
}
