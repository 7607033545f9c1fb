package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/lexical"
)

type scrollVectorFake struct {
	vectorFake
	chunks    []domain.Chunk
	scrollErr error
}

func (f *scrollVectorFake) ScrollAll(context.Context) ([]domain.Chunk, error) {
	return f.chunks, f.scrollErr
}

func TestRebuildLexicalIndexFromCorpus(t *testing.T) {
	vector := &scrollVectorFake{chunks: []domain.Chunk{
		{ID: "d1:0", Text: "alpine trail conditions", DocumentName: "trails.txt"},
		{ID: "d2:0", Text: "river crossing safety", DocumentName: "safety.txt"},
	}}
	idx := lexical.New("")
	uc := NewRebuildIndexUseCase(vector, idx, nil)

	count, err := uc.RebuildLexicalIndex(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 indexed chunks reported, got %d", count)
	}
	if idx.Size() != 2 {
		t.Fatalf("expected index over 2 chunks, got %d", idx.Size())
	}
	hits := idx.Query("alpine trail", 5)
	if len(hits) == 0 || hits[0].ID != "d1:0" {
		t.Fatalf("expected rebuilt index to answer queries, got %v", hits)
	}
}

func TestRebuildLexicalIndexScrollFailure(t *testing.T) {
	vector := &scrollVectorFake{scrollErr: errors.New("collection unavailable")}
	idx := lexical.New("")
	idx.Rebuild([]domain.Chunk{{ID: "d1:0", Text: "keep me"}})
	uc := NewRebuildIndexUseCase(vector, idx, nil)

	if _, err := uc.RebuildLexicalIndex(context.Background()); err == nil {
		t.Fatal("expected scroll failure to surface")
	}
	if idx.Size() != 1 {
		t.Fatal("expected prior index snapshot untouched on failure")
	}
}
