package domain

import "fmt"

// Chunk is the atomic retrievable unit of text. Chunks are produced by
// document processing and read-only for the retrieval core.
type Chunk struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	DocumentName string `json:"document_name"`
	DocumentPath string `json:"document_path"`
	ChunkIndex   int    `json:"chunk_index"`
	PageNumber   int    `json:"page_number,omitempty"`
	IsTable      bool   `json:"is_table"`
}

// ChunkID derives the stable chunk identifier from document identity and
// position. Rebuilding the same document yields the same IDs.
func ChunkID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s:%d", documentID, chunkIndex)
}

// Fragment is an intermediate extraction unit. Prose fragments are split
// further by the chunker; table fragments map 1:1 to chunks.
type Fragment struct {
	Text       string
	PageNumber int
	IsTable    bool
}
