package paperdex

// Paper is a stored paper as seen through the SDK.
type Paper struct {
	ID             string
	Title          string
	Summary        string
	Keywords       []string
	Snippet        string
	FullTextLength int
	Extra          map[string]string
}

// PaperInput describes a paper to add. Title is required; everything
// else enriches the composite representation that gets embedded.
type PaperInput struct {
	Title          string
	Summary        string
	Keywords       []string
	Snippet        string
	FullTextLength int
	Extra          map[string]string
}

// SearchQuery is a retrieval request.
// TopK defaults to 5 and must stay within [1, 20]. Filters match
// exactly against flat metadata fields. Explain nil means "explain when
// a generator is configured"; set it explicitly to override.
type SearchQuery struct {
	Query   string
	TopK    int
	Filters map[string]string
	Explain *bool
}

// SearchMatch is a single ranked hit.
type SearchMatch struct {
	ID          string
	Score       float64
	Title       string
	Summary     string
	Keywords    []string
	Snippet     string
	Extra       map[string]string
	Explanation string
}

// DefaultTopK is used when SearchQuery.TopK is zero.
const DefaultTopK = 5
