package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
	"github.com/gaffoor434/knowledge-base/internal/core/ports"
)

// ProcessDocumentUseCase extracts, chunks, embeds and indexes one uploaded
// document in the vector store. Table rows become standalone chunks; prose
// fragments pass through the chunker first.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vectorDB:  vectorDB,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	chunkCount, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SetChunkCount(ctx, documentID, chunkCount); err != nil {
		return fmt.Errorf("save chunk count: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusIndexed, ""); err != nil {
		return fmt.Errorf("set status=indexed: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (int, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("fetch document by id: %w", err)
	}

	fragments, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("extract document: %w", err)
	}

	chunks := uc.buildChunks(doc, fragments)
	if len(chunks) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("extraction produced zero chunks"))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	// Reprocessing replaces prior points for this document wholesale.
	if err := uc.vectorDB.DeleteByDocumentPath(ctx, doc.StoragePath); err != nil {
		return 0, fmt.Errorf("delete prior chunks: %w", err)
	}
	if err := uc.vectorDB.IndexChunks(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("index chunks in vector db: %w", err)
	}
	return len(chunks), nil
}

// buildChunks assigns stable identifiers derived from document identity and
// position. Chunk index ordering is extraction order.
func (uc *ProcessDocumentUseCase) buildChunks(doc *domain.Document, fragments []domain.Fragment) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(fragments))
	next := 0
	add := func(text string, pageNumber int, isTable bool) {
		out = append(out, domain.Chunk{
			ID:           domain.ChunkID(doc.ID, next),
			Text:         text,
			DocumentName: doc.Filename,
			DocumentPath: doc.StoragePath,
			ChunkIndex:   next,
			PageNumber:   pageNumber,
			IsTable:      isTable,
		})
		next++
	}

	for _, frag := range fragments {
		if frag.Text == "" {
			continue
		}
		if frag.IsTable {
			add(frag.Text, frag.PageNumber, true)
			continue
		}
		for _, piece := range uc.chunker.Split(frag.Text) {
			add(piece, frag.PageNumber, false)
		}
	}
	return out
}
