// Package llm wraps the generative provider with the paper-analysis
// prompts: summaries, keyword extraction and relevance explanations.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/paperdex/internal/domain/paper"
)

// MaxPromptChars bounds how much source text goes into a prompt. Longer
// texts are cut and marked with an ellipsis.
const MaxPromptChars = 8000

// FallbackExplanation substitutes a per-hit explanation when generation fails.
const FallbackExplanation = "This paper is relevant because it matches keywords and topics from your query."

// Per-call completion caps.
const (
	summaryMaxTokens     = 300
	keywordsMaxTokens    = 200
	explanationMaxTokens = 150
)

// DefaultSummarySentences is the summary length the ingest pipeline asks for.
const DefaultSummarySentences = 6

// Service runs the paper-analysis prompts against a generator.
type Service struct {
	gen Generator
}

// New creates an LLM service.
func New(gen Generator) *Service {
	return &Service{gen: gen}
}

// Summarize produces a summary of at most maxSentences sentences.
func (s *Service) Summarize(ctx context.Context, text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = DefaultSummarySentences
	}

	prompt := fmt.Sprintf(
		"Summarize the following research paper text in %d sentences or less. "+
			"Focus on the main contributions, methods, and findings.\n\nText:\n%s\n\nSummary:",
		maxSentences, Truncate(text),
	)

	result, err := s.gen.Generate(ctx,
		"You are an expert at summarizing research papers concisely and accurately.",
		prompt, summaryMaxTokens,
	)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}

// Keywords extracts up to count key terms as a comma-separated completion.
// The provider may return fewer; extras beyond count are dropped.
func (s *Service) Keywords(ctx context.Context, text string, count int) ([]string, error) {
	if count <= 0 {
		count = 10
	}

	prompt := fmt.Sprintf(
		"Extract %d key terms, techniques, or concepts from the following research paper text. "+
			"Return only a comma-separated list of keywords, no explanations.\n\nText:\n%s\n\nKeywords:",
		count, Truncate(text),
	)

	result, err := s.gen.Generate(ctx,
		"You are an expert at identifying key terms and concepts in research papers.",
		prompt, keywordsMaxTokens,
	)
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}

	keywords := paper.SplitKeywords(strings.TrimSpace(result.Text))
	if len(keywords) > count {
		keywords = keywords[:count]
	}
	return keywords, nil
}

// Explain produces a 1-2 sentence relevance explanation for one search hit.
func (s *Service) Explain(ctx context.Context, query, title, summary string, keywords []string) (string, error) {
	prompt := fmt.Sprintf(
		"Given the user query %q, explain in 1-2 sentences why this research paper is relevant:\n\n"+
			"Title: %s\nSummary: %s\nKeywords: %s\n\nExplanation:",
		query, title, summary, strings.Join(keywords, ", "),
	)

	result, err := s.gen.Generate(ctx,
		"You are an expert at explaining why research papers are relevant to queries. Be concise and specific.",
		prompt, explanationMaxTokens,
	)
	if err != nil {
		return "", fmt.Errorf("explain relevance: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}

// Truncate cuts text to MaxPromptChars characters and marks the cut with
// an ellipsis. The bound is in runes, so a multi-byte text is never cut
// mid-character.
func Truncate(text string) string {
	if len(text) <= MaxPromptChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= MaxPromptChars {
		return text
	}
	return string(runes[:MaxPromptChars]) + "..."
}
