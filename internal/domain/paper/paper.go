package paper

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SnippetLength is the stored prefix of the source text, in characters.
const SnippetLength = 500

// MaxExtraFields bounds the free-form extension map.
const MaxExtraFields = 16

// Reserved metadata field names. Extension map keys must not shadow them.
// The __-prefixed names are storage-internal hash fields (vector codec,
// insertion sequence) that metadata must never overwrite.
var reservedFields = map[string]bool{
	"title":            true,
	"summary":          true,
	"keywords":         true,
	"content_snippet":  true,
	"full_text_length": true,
	"__vector":         true,
	"__seq":            true,
}

// Paper is the stored unit of retrieval (immutable value object).
type Paper struct {
	id             string
	title          string
	summary        string
	keywords       []string
	snippet        string
	fullTextLength int
	extra          map[string]string
	vector         []float32
}

// New validates and creates a Paper.
// ID and title are required. Keywords keep their order and duplicates.
// Extra is the bounded extension map for collaborator-supplied fields
// (e.g. source filename); its keys must not shadow the typed fields.
func New(
	id, title, summary string, keywords []string,
	snippet string, fullTextLength int, extra map[string]string,
) (Paper, error) {
	if id == "" {
		return Paper{}, fmt.Errorf("paper ID is required")
	}
	if strings.TrimSpace(title) == "" {
		return Paper{}, fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(snippet) > SnippetLength {
		return Paper{}, fmt.Errorf("snippet too long (max %d chars)", SnippetLength)
	}
	if fullTextLength < 0 {
		return Paper{}, fmt.Errorf("full text length must be non-negative")
	}
	if len(extra) > MaxExtraFields {
		return Paper{}, fmt.Errorf("too many extra fields (max %d)", MaxExtraFields)
	}
	for k := range extra {
		if k == "" {
			return Paper{}, fmt.Errorf("extra field key must not be empty")
		}
		if reservedFields[k] {
			return Paper{}, fmt.Errorf("extra field %q shadows a paper field", k)
		}
	}

	return Paper{
		id:             id,
		title:          title,
		summary:        summary,
		keywords:       cloneKeywords(keywords),
		snippet:        snippet,
		fullTextLength: fullTextLength,
		extra:          cloneStringMap(extra),
	}, nil
}

// Reconstruct creates a Paper without validation (storage hydration).
func Reconstruct(
	id, title, summary string, keywords []string,
	snippet string, fullTextLength int, extra map[string]string,
	vector []float32,
) Paper {
	return Paper{
		id: id, title: title, summary: summary, keywords: keywords,
		snippet: snippet, fullTextLength: fullTextLength, extra: extra,
		vector: vector,
	}
}

// ID returns the paper identifier.
func (p *Paper) ID() string { return p.id }

// Title returns the paper title.
func (p *Paper) Title() string { return p.title }

// Summary returns the generated summary.
func (p *Paper) Summary() string { return p.summary }

// Keywords returns the extracted keywords in extraction order.
func (p *Paper) Keywords() []string { return p.keywords }

// Snippet returns the stored prefix of the source text.
func (p *Paper) Snippet() string { return p.snippet }

// FullTextLength returns the length of the source text (informational).
func (p *Paper) FullTextLength() int { return p.fullTextLength }

// Extra returns the free-form extension fields.
func (p *Paper) Extra() map[string]string { return p.extra }

// Vector returns the embedding vector.
func (p *Paper) Vector() []float32 { return p.vector }

// WithVector returns a copy with the given vector set.
func (p *Paper) WithVector(v []float32) Paper {
	c := *p
	c.vector = v
	return c
}

// Composite builds the synthetic short document that gets embedded in place
// of the full raw text: curated signal first, bounded size.
func Composite(title, summary string, keywords []string, snippet string) string {
	return fmt.Sprintf(
		"Title: %s\n\nSummary: %s\n\nKeywords: %s\n\nContent: %s",
		title, summary, JoinKeywords(keywords), snippet,
	)
}

// SnippetOf returns the bounded prefix of text stored as the retrievable surrogate.
func SnippetOf(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLength {
		return text
	}
	return string(runes[:SnippetLength])
}

// JoinKeywords flattens keywords for flat metadata storage.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

// SplitKeywords reverses JoinKeywords: split on commas, trim, drop empties.
// Order is preserved.
func SplitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FullTextLengthFromField parses the stored full_text_length metadata field.
// Malformed values hydrate as 0 — the field is informational.
func FullTextLengthFromField(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func cloneKeywords(ks []string) []string {
	if ks == nil {
		return nil
	}
	c := make([]string, len(ks))
	copy(c, ks)
	return c
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
