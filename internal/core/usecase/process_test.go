package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

type processRepoFake struct {
	weightsRepoFake
	doc        *domain.Document
	statuses   []domain.DocumentStatus
	chunkCount int
}

func (f *processRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.doc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	return f.doc, nil
}

func (f *processRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, _ string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *processRepoFake) SetChunkCount(_ context.Context, _ string, count int) error {
	f.chunkCount = count
	return nil
}

type extractorFake struct {
	fragments []domain.Fragment
	err       error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) ([]domain.Fragment, error) {
	return f.fragments, f.err
}

type chunkerFake struct{}

func (chunkerFake) Split(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}

type indexingVectorFake struct {
	vectorFake
	indexed []domain.Chunk
	deleted []string
}

func (f *indexingVectorFake) IndexChunks(_ context.Context, chunks []domain.Chunk, _ [][]float32) error {
	f.indexed = append(f.indexed, chunks...)
	return nil
}

func (f *indexingVectorFake) DeleteByDocumentPath(_ context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func TestProcessByIDIndexesChunksWithStableIdentity(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{
		ID:          "doc-1",
		Filename:    "report.pdf",
		StoragePath: "doc-1_report.pdf",
	}}
	extractor := &extractorFake{fragments: []domain.Fragment{
		{Text: "prose section", PageNumber: 1},
		{Text: "name | age | 30", PageNumber: 2, IsTable: true},
	}}
	vector := &indexingVectorFake{}
	uc := NewProcessDocumentUseCase(repo, extractor, chunkerFake{}, &embedderFake{vector: []float32{0.1}}, vector)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(vector.indexed) != 2 {
		t.Fatalf("expected 2 indexed chunks, got %d", len(vector.indexed))
	}
	if vector.indexed[0].ID != "doc-1:0" || vector.indexed[1].ID != "doc-1:1" {
		t.Fatalf("expected stable derived chunk ids, got %s / %s", vector.indexed[0].ID, vector.indexed[1].ID)
	}
	if !vector.indexed[1].IsTable {
		t.Fatal("expected table fragment to keep is_table flag")
	}
	if len(vector.deleted) != 1 || vector.deleted[0] != "doc-1_report.pdf" {
		t.Fatalf("expected prior points deleted by document path, got %v", vector.deleted)
	}
	if repo.chunkCount != 2 {
		t.Fatalf("expected chunk count 2 recorded, got %d", repo.chunkCount)
	}

	last := repo.statuses[len(repo.statuses)-1]
	if last != domain.StatusIndexed {
		t.Fatalf("expected final status indexed, got %s", last)
	}
}

func TestProcessByIDMarksFailedOnExtractionError(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "doc-1_x"}}
	extractor := &extractorFake{err: errors.New("unreadable file")}
	uc := NewProcessDocumentUseCase(repo, extractor, chunkerFake{}, &embedderFake{}, &indexingVectorFake{})

	if err := uc.ProcessByID(context.Background(), "doc-1"); err == nil {
		t.Fatal("expected processing error")
	}
	last := repo.statuses[len(repo.statuses)-1]
	if last != domain.StatusFailed {
		t.Fatalf("expected failed status recorded, got %s", last)
	}
}

func TestProcessByIDRejectsZeroChunks(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "doc-1_x"}}
	extractor := &extractorFake{fragments: []domain.Fragment{{Text: ""}}}
	uc := NewProcessDocumentUseCase(repo, extractor, chunkerFake{}, &embedderFake{}, &indexingVectorFake{})

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero chunks, got %v", err)
	}
}
