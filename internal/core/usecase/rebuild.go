package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gaffoor434/knowledge-base/internal/core/ports"
)

// RebuildIndexUseCase rebuilds the lexical index wholesale from the chunk
// corpus held by the vector store. The index swap is atomic, so in-flight
// queries observe either the fully-old or fully-new snapshot.
type RebuildIndexUseCase struct {
	vectorDB ports.VectorStore
	lexical  ports.LexicalIndex
	logger   *slog.Logger
}

func NewRebuildIndexUseCase(vectorDB ports.VectorStore, lexical ports.LexicalIndex, logger *slog.Logger) *RebuildIndexUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RebuildIndexUseCase{
		vectorDB: vectorDB,
		lexical:  lexical,
		logger:   logger,
	}
}

// RebuildLexicalIndex replaces the index with one built from every chunk in
// the vector store and reports how many chunks it holds.
func (uc *RebuildIndexUseCase) RebuildLexicalIndex(ctx context.Context) (int, error) {
	chunks, err := uc.vectorDB.ScrollAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("scroll chunk corpus: %w", err)
	}

	uc.lexical.Rebuild(chunks)
	if err := uc.lexical.Save(); err != nil {
		// The in-memory swap already happened; persistence failure only
		// costs a rebuild on next restart.
		uc.logger.Warn("persist lexical index failed", "error", err)
	}

	uc.logger.Info("lexical index rebuilt", "chunks", len(chunks))
	return len(chunks), nil
}
