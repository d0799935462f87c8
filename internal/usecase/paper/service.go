// Package paper manages the paper catalog: each paper is embedded once as
// a composite representation and stored in the similarity index together
// with its flat metadata.
package paper

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdex/internal/domain"
	domidx "github.com/kailas-cloud/paperdex/internal/domain/index"
	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
)

// Metadata field names in the index entry.
const (
	fieldTitle          = "title"
	fieldSummary        = "summary"
	fieldKeywords       = "keywords"
	fieldSnippet        = "content_snippet"
	fieldFullTextLength = "full_text_length"
)

// AddPaperInput carries the processed paper fields.
type AddPaperInput struct {
	Title          string
	Summary        string
	Keywords       []string
	Snippet        string
	FullTextLength int
	Extra          map[string]string
}

// Service handles paper CRUD with automatic vectorization.
type Service struct {
	embedder Embedder
	index    Index
	logger   *zap.Logger
}

// New creates a paper service.
func New(embedder Embedder, index Index, logger *zap.Logger) *Service {
	return &Service{embedder: embedder, index: index, logger: logger}
}

// AddPaper assigns a fresh id, embeds the composite representation and
// stores the entry. The composite — not the raw full text — is what gets
// embedded, so papers of any length index at a stable cost.
func (s *Service) AddPaper(ctx context.Context, in AddPaperInput) (dompaper.Paper, error) {
	p, err := dompaper.New(
		uuid.NewString(), in.Title, in.Summary, in.Keywords,
		in.Snippet, in.FullTextLength, in.Extra,
	)
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	composite := dompaper.Composite(p.Title(), p.Summary(), p.Keywords(), p.Snippet())

	result, err := s.embedder.Embed(ctx, composite)
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("embed paper %s: %w", p.ID(), err)
	}

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	entry, err := domidx.NewEntry(p.ID(), result.Embedding, buildFields(&p))
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("build index entry: %w", err)
	}

	if err := s.index.Add(ctx, entry); err != nil {
		return dompaper.Paper{}, fmt.Errorf("index paper %s: %w", p.ID(), err)
	}

	s.logger.Info("Paper added",
		zap.String("paper_id", p.ID()),
		zap.String("title", p.Title()),
		zap.Int("keywords", len(p.Keywords())),
		zap.Int("full_text_length", p.FullTextLength()),
	)

	stored := p.WithVector(result.Embedding)
	return stored, nil
}

// GetPaper returns a paper by id.
func (s *Service) GetPaper(ctx context.Context, id string) (dompaper.Paper, error) {
	entry, err := s.index.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return dompaper.Paper{}, fmt.Errorf("paper %s: %w", id, domain.ErrPaperNotFound)
		}
		return dompaper.Paper{}, fmt.Errorf("get paper %s: %w", id, err)
	}
	return paperFromEntry(&entry), nil
}

// ListPapers returns all papers in insertion order.
func (s *Service) ListPapers(ctx context.Context) ([]dompaper.Paper, error) {
	entries := s.index.List(ctx)
	papers := make([]dompaper.Paper, len(entries))
	for i := range entries {
		papers[i] = paperFromEntry(&entries[i])
	}
	return papers, nil
}

// DeletePaper removes a paper. Unknown ids return ErrPaperNotFound.
func (s *Service) DeletePaper(ctx context.Context, id string) error {
	deleted, err := s.index.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete paper %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("paper %s: %w", id, domain.ErrPaperNotFound)
	}

	s.logger.Info("Paper deleted", zap.String("paper_id", id))
	return nil
}

// Count returns the number of stored papers.
func (s *Service) Count(ctx context.Context) int {
	return s.index.Count(ctx)
}

// buildFields flattens a paper into index entry metadata.
func buildFields(p *dompaper.Paper) map[string]string {
	m := make(map[string]string, 5+len(p.Extra()))
	m[fieldTitle] = p.Title()
	m[fieldSummary] = p.Summary()
	m[fieldKeywords] = dompaper.JoinKeywords(p.Keywords())
	m[fieldSnippet] = p.Snippet()
	m[fieldFullTextLength] = strconv.Itoa(p.FullTextLength())
	for k, v := range p.Extra() {
		m[k] = v
	}
	return m
}

// paperFromEntry reshapes flat entry metadata back into a paper.
func paperFromEntry(entry *domidx.Entry) dompaper.Paper {
	fields := entry.Fields()

	extra := make(map[string]string)
	for k, v := range fields {
		switch k {
		case fieldTitle, fieldSummary, fieldKeywords, fieldSnippet, fieldFullTextLength:
		default:
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		extra = nil
	}

	return dompaper.Reconstruct(
		entry.ID(),
		fields[fieldTitle],
		fields[fieldSummary],
		dompaper.SplitKeywords(fields[fieldKeywords]),
		fields[fieldSnippet],
		dompaper.FullTextLengthFromField(fields[fieldFullTextLength]),
		extra,
		entry.Vector(),
	)
}
