package domain

// ScoredRecord is an embedding record ranked against a query.
type ScoredRecord struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata RecordMetadata `json:"metadata"`

	// Score is the cosine similarity to the query.
	Score float64 `json:"score"`
}

// Citation identifies where a piece of context came from.
type Citation struct {
	Course   string  `json:"course"`
	Chapter  string  `json:"chapter"`
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// QueryResult is the grounded context for one query.
type QueryResult struct {
	// Query is the text that was searched.
	Query string `json:"query"`

	// ContextBlock is the results formatted for a language model, in rank order.
	ContextBlock string `json:"contextBlock"`

	// Citations parallel Results.
	Citations []Citation `json:"citations"`

	// Results are the ranked records.
	Results []ScoredRecord `json:"results"`
}

// IsEmpty returns true if nothing was retrieved.
func (r *QueryResult) IsEmpty() bool {
	return r == nil || len(r.Results) == 0
}
