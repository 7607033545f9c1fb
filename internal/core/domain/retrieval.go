package domain

// ScoredResult is the per-query record flowing through the ranking
// pipeline. Missing-side scores are 0.0, never absent.
type ScoredResult struct {
	ID           string  `json:"id"`
	Text         string  `json:"text"`
	DocumentName string  `json:"document_name"`
	ChunkIndex   int     `json:"chunk_index"`
	PageNumber   int     `json:"page_number,omitempty"`
	IsTable      bool    `json:"is_table,omitempty"`
	LexicalScore float64 `json:"lexical_score"`
	LexicalNorm  float64 `json:"lexical_norm"`
	VectorScore  float64 `json:"vector_score"`
	VectorNorm   float64 `json:"vector_norm"`
	Combined     float64 `json:"combined"`
	RerankScore  float64 `json:"rerank_score"`
	Weighted     float64 `json:"weighted_score"`
}

// RetrievalOutcome distinguishes reported "not found" terminal states from
// true faults. EmptyCorpus and NoConfidentResult are results the caller can
// present, not errors.
type RetrievalOutcome string

const (
	OutcomeOK                RetrievalOutcome = "ok"
	OutcomeEmptyCorpus       RetrievalOutcome = "empty_corpus"
	OutcomeNoConfidentResult RetrievalOutcome = "no_confident_result"
)

type Retrieval struct {
	Outcome RetrievalOutcome `json:"outcome"`
	Results []ScoredResult   `json:"results"`

	// Pipeline metadata, reported so callers can see how the ranking ran.
	Reranked      bool `json:"reranked"`
	SubqueryCount int  `json:"subquery_count"`
}

type Answer struct {
	Text            string   `json:"answer"`
	SourceDocuments []string `json:"source_documents"`
}
