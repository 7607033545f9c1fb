package ports

import (
	"context"
	"io"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

// DocumentRepository persists and reads document registry state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SetChunkCount(ctx context.Context, id string, count int) error
	SourceWeights(ctx context.Context) (map[string]float64, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue carries corpus-change events from ingestion to the worker
// that owns the index rebuild, and rebuild notifications back to every
// serving process. Corpus-change delivery is queue-grouped (one worker per
// event); rebuild notifications are broadcast so each API process reloads
// its own lexical snapshot.
type MessageQueue interface {
	PublishCorpusChanged(ctx context.Context, documentID string) error
	SubscribeCorpusChanged(ctx context.Context, handler func(context.Context, string) error) error
	PublishIndexRebuilt(ctx context.Context) error
	SubscribeIndexRebuilt(ctx context.Context, handler func(context.Context) error) error
}

// TextExtractor extracts fragments from a stored document. Table rows are
// emitted as individual fragments with IsTable set.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) ([]domain.Fragment, error)
}

// Chunker splits prose text into retrievable pieces.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes chunks and performs semantic search. Raw scores are
// backend-defined; normalization always happens in the retrieval core.
type VectorStore interface {
	IndexChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	DeleteByDocumentPath(ctx context.Context, documentPath string) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.ScoredResult, error)
	Count(ctx context.Context) (int, error)
	ScrollAll(ctx context.Context) ([]domain.Chunk, error)
}

// LexicalIndex is the term-frequency index owned by this service. Rebuild
// replaces the whole snapshot atomically; there is no incremental mutation.
type LexicalIndex interface {
	Rebuild(chunks []domain.Chunk)
	Query(text string, topK int) []domain.ScoredResult
	Size() int
	Save() error
	Load() error
}

// QueryExpander reformulates a query into sub-queries to raise recall. The
// returned slice always includes the original query first.
type QueryExpander interface {
	Expand(ctx context.Context, query string) []string
}

// Reranker scores (query, text) pairs jointly. Available reports the cached
// capability state; Rerank must not be called when it reports false.
type Reranker interface {
	Available(ctx context.Context) bool
	Rerank(ctx context.Context, query string, texts []string) ([]float64, error)
}

// AnswerGenerator creates the final user-facing answer from grounded chunks.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []domain.ScoredResult) (string, error)
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
}
