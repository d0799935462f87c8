package paperdex

import (
	"context"
	"fmt"
	"time"

	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	paperuc "github.com/kailas-cloud/paperdex/internal/usecase/paper"
)

// AddPaper embeds the paper's composite representation and stores it.
// The returned Paper carries the generated ID.
func (c *Client) AddPaper(ctx context.Context, in PaperInput) (_ Paper, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_paper", start, err) }()

	p, err := c.paperSvc.AddPaper(ctx, paperuc.AddPaperInput{
		Title:          in.Title,
		Summary:        in.Summary,
		Keywords:       in.Keywords,
		Snippet:        in.Snippet,
		FullTextLength: in.FullTextLength,
		Extra:          in.Extra,
	})
	if err != nil {
		return Paper{}, fmt.Errorf("add paper: %w", err)
	}
	return fromInternalPaper(&p), nil
}

// GetPaper retrieves a paper by ID.
func (c *Client) GetPaper(ctx context.Context, id string) (_ Paper, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_paper", start, err) }()

	p, err := c.paperSvc.GetPaper(ctx, id)
	if err != nil {
		return Paper{}, fmt.Errorf("get paper: %w", err)
	}
	return fromInternalPaper(&p), nil
}

// ListPapers returns all stored papers in insertion order.
func (c *Client) ListPapers(ctx context.Context) (_ []Paper, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_papers", start, err) }()

	papers, err := c.paperSvc.ListPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	out := make([]Paper, len(papers))
	for i := range papers {
		out[i] = fromInternalPaper(&papers[i])
	}
	return out, nil
}

// DeletePaper removes a paper by ID.
func (c *Client) DeletePaper(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_paper", start, err) }()

	if err = c.paperSvc.DeletePaper(ctx, id); err != nil {
		return fmt.Errorf("delete paper: %w", err)
	}
	return nil
}

// CountPapers returns the number of stored papers.
func (c *Client) CountPapers(ctx context.Context) int {
	start := time.Now()
	defer func() { c.obs.observe("count_papers", start, nil) }()

	return c.paperSvc.Count(ctx)
}

func fromInternalPaper(p *dompaper.Paper) Paper {
	keywords := p.Keywords()
	if keywords == nil {
		keywords = []string{}
	}
	return Paper{
		ID:             p.ID(),
		Title:          p.Title(),
		Summary:        p.Summary(),
		Keywords:       keywords,
		Snippet:        p.Snippet(),
		FullTextLength: p.FullTextLength(),
		Extra:          p.Extra(),
	}
}
