package core

// DocumentMatch is a scored document fragment returned by similarity search.
// Content may be truncated by the retrieval engine before it is surfaced to a
// model prompt. Score is a cosine similarity in [0,1].
type DocumentMatch struct {
	DocID   string  `json:"doc_id"`
	DocName string  `json:"doc_name"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
