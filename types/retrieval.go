package types

// Source kinds for ranked retrieval items.
const (
	SourceKindDocument = "document"
	SourceKindHub      = "curated"
)

// SearchMode selects the index search strategy. There is no automatic
// fallback between modes inside the index adapter; mode selection belongs
// to the caller.
const (
	SearchModeText   = "text"
	SearchModeHybrid = "hybrid"
)

// SearchOptions parametrizes an index search.
type SearchOptions struct {
	Top    int
	Mode   string
	Vector []float32
	Filter string
}

// RankedItem is one scored retrieval result, normalized across sources.
type RankedItem struct {
	SourceKind string   `json:"source_kind"`
	Score      float64  `json:"score"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	DocumentID string   `json:"document_id,omitempty"`
	ChunkIndex int      `json:"chunk_index,omitempty"`
	PageNumber int      `json:"page_number,omitempty"`
	Type       string   `json:"type,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// ContextOptions controls retrieval context assembly.
type ContextOptions struct {
	TopDocuments int
	TopHub       int
	UseHub       bool
}

// RetrievalContext is the assembled context for one query: the structured
// item list plus the rendered text block handed to the generator. Built
// fresh per query, never persisted.
type RetrievalContext struct {
	Items        []RankedItem `json:"items"`
	RenderedText string       `json:"rendered_text"`
}
