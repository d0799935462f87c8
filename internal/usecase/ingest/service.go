// Package ingest turns an uploaded document into a stored paper:
// extract text, summarize, pull keywords, then hand off to the catalog.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdex/internal/domain"
	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	"github.com/kailas-cloud/paperdex/internal/usecase/llm"
	"github.com/kailas-cloud/paperdex/internal/usecase/paper"
)

// MinTextLength is the minimum amount of extracted text worth indexing.
// Scanned PDFs without an OCR layer typically yield less.
const MinTextLength = 100

// DefaultKeywordCount is the number of keywords extracted per paper.
const DefaultKeywordCount = 10

// titleScanLines bounds the title search in the extracted text.
const titleScanLines = 5

// Service runs the upload pipeline.
type Service struct {
	extractor  Extractor
	summarizer Summarizer
	papers     PaperAdder
	logger     *zap.Logger
}

// New creates an ingest service.
func New(extractor Extractor, summarizer Summarizer, papers PaperAdder, logger *zap.Logger) *Service {
	return &Service{extractor: extractor, summarizer: summarizer, papers: papers, logger: logger}
}

// IngestDocument extracts text from the upload, generates a summary and
// keywords, and stores the paper. An empty titleOverride derives the
// title from the text, falling back to the filename.
func (s *Service) IngestDocument(
	ctx context.Context, r io.Reader, filename, titleOverride string,
) (dompaper.Paper, error) {
	text, err := s.extractor.ExtractText(ctx, r, filename)
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("extract text: %w", err)
	}
	if len(strings.TrimSpace(text)) < MinTextLength {
		return dompaper.Paper{}, fmt.Errorf(
			"%w: could not extract sufficient text from document", domain.ErrValidation,
		)
	}

	s.logger.Debug("Text extracted",
		zap.String("filename", filename),
		zap.Int("length", len(text)),
	)

	summary, err := s.summarizer.Summarize(ctx, text, llm.DefaultSummarySentences)
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("summarize: %w", err)
	}

	keywords, err := s.summarizer.Keywords(ctx, text, DefaultKeywordCount)
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("extract keywords: %w", err)
	}

	title := titleOverride
	if strings.TrimSpace(title) == "" {
		title = deriveTitle(text, filename)
	}

	p, err := s.papers.AddPaper(ctx, paper.AddPaperInput{
		Title:          title,
		Summary:        summary,
		Keywords:       keywords,
		Snippet:        dompaper.SnippetOf(text),
		FullTextLength: len(text),
		Extra:          map[string]string{"filename": filename},
	})
	if err != nil {
		return dompaper.Paper{}, err
	}

	s.logger.Info("Document ingested",
		zap.String("paper_id", p.ID()),
		zap.String("filename", filename),
		zap.String("title", p.Title()),
	)
	return p, nil
}

// deriveTitle picks the first non-empty line near the top of the text,
// falling back to the filename without its extension.
func deriveTitle(text, filename string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > titleScanLines {
		lines = lines[:titleScanLines]
	}
	for _, line := range lines {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
