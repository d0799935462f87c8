package chi

import (
	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	"github.com/kailas-cloud/paperdex/internal/usecase/query"
)

// Machine-readable error codes.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeUnauthorized       = "unauthorized"
	codePaperNotFound      = "paper_not_found"
	codeAlreadyExists      = "already_exists"
	codeDimensionMismatch  = "dimension_mismatch"
	codeBudgetExceeded     = "budget_exceeded"
	codeExternalService    = "external_service_error"
	codeStorageUnavailable = "storage_unavailable"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// addPaperRequest stores a pre-processed paper, bypassing extraction and
// LLM summarization. Used by bulk loaders that already have metadata.
type addPaperRequest struct {
	Title          string            `json:"title"`
	Summary        string            `json:"summary,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
	ContentSnippet string            `json:"content_snippet,omitempty"`
	FullTextLength int               `json:"full_text_length,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

type paperResponse struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Summary        string            `json:"summary"`
	Keywords       []string          `json:"keywords"`
	ContentSnippet string            `json:"content_snippet"`
	FullTextLength int               `json:"full_text_length"`
	Extra          map[string]string `json:"extra,omitempty"`
}

type paperListResponse struct {
	Items []paperResponse `json:"items"`
	Total int             `json:"total"`
}

type searchRequest struct {
	Query   string            `json:"query"`
	TopK    int               `json:"top_k,omitempty"`
	Explain *bool             `json:"explain,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

type searchResultItem struct {
	ID             string            `json:"id"`
	Score          float64           `json:"similarity_score"`
	Title          string            `json:"title"`
	Summary        string            `json:"summary"`
	Keywords       []string          `json:"keywords"`
	ContentSnippet string            `json:"content_snippet"`
	Extra          map[string]string `json:"extra,omitempty"`
	Explanation    string            `json:"explanation,omitempty"`
}

type searchResponse struct {
	Query   string             `json:"query"`
	Results []searchResultItem `json:"results"`
	Total   int                `json:"total"`
}

func paperToResponse(p *dompaper.Paper) paperResponse {
	keywords := p.Keywords()
	if keywords == nil {
		keywords = []string{}
	}
	return paperResponse{
		ID:             p.ID(),
		Title:          p.Title(),
		Summary:        p.Summary(),
		Keywords:       keywords,
		ContentSnippet: p.Snippet(),
		FullTextLength: p.FullTextLength(),
		Extra:          p.Extra(),
	}
}

func matchToResponse(m *query.Match) searchResultItem {
	fields := m.Hit.Fields()

	extra := make(map[string]string)
	for k, v := range fields {
		switch k {
		case "title", "summary", "keywords", "content_snippet", "full_text_length":
		default:
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		extra = nil
	}

	keywords := dompaper.SplitKeywords(fields["keywords"])
	if keywords == nil {
		keywords = []string{}
	}

	return searchResultItem{
		ID:             m.Hit.ID(),
		Score:          m.Hit.Score(),
		Title:          fields["title"],
		Summary:        fields["summary"],
		Keywords:       keywords,
		ContentSnippet: fields["content_snippet"],
		Extra:          extra,
		Explanation:    m.Explanation,
	}
}
