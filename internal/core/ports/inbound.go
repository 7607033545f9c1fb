package ports

import (
	"context"
	"io"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// ChunkRetriever runs the full hybrid retrieval pipeline and returns ranked,
// gated chunks without generation.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string) (*domain.Retrieval, error)
}

// KnowledgeQuerier answers a question grounded on retrieved chunks.
type KnowledgeQuerier interface {
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document
// processing triggered by corpus-change events.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// IndexRebuilder rebuilds the lexical index wholesale from the current
// corpus, swaps it in atomically and reports the indexed chunk count.
type IndexRebuilder interface {
	RebuildLexicalIndex(ctx context.Context) (int, error)
}
