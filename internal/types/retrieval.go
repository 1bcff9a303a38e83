package types

// RetrievalHit is one ranked result of an ad hoc knowledge search.
// Hits are ordered by descending relevance and never persisted.
type RetrievalHit struct {
	ChunkID        int64   `json:"chunk_id"`
	DocumentID     int64   `json:"document_id"`
	Filename       string  `json:"filename"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
	Distance       float64 `json:"distance"`
}

// RAGStats summarizes the indexed knowledge corpus.
type RAGStats struct {
	TotalDocuments     int  `json:"total_documents"`
	ProcessedDocuments int  `json:"processed_documents"`
	TotalChunks        int  `json:"total_chunks"`
	RAGEnabled         bool `json:"rag_enabled"`
}
