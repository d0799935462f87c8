package ingest

import (
	"context"
	"io"

	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	"github.com/kailas-cloud/paperdex/internal/usecase/paper"
)

// Extractor pulls plain text out of an uploaded document.
type Extractor interface {
	ExtractText(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Summarizer condenses full text into a summary and keywords.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxSentences int) (string, error)
	Keywords(ctx context.Context, text string, count int) ([]string, error)
}

// PaperAdder stores a processed paper.
type PaperAdder interface {
	AddPaper(ctx context.Context, in paper.AddPaperInput) (dompaper.Paper, error)
}
