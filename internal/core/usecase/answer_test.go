package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

type retrieverFake struct {
	retrieval *domain.Retrieval
	err       error
}

func (f *retrieverFake) Retrieve(context.Context, string) (*domain.Retrieval, error) {
	return f.retrieval, f.err
}

type generatorFake struct {
	answer string
	err    error
	calls  int
}

func (f *generatorFake) GenerateAnswer(context.Context, string, []domain.ScoredResult) (string, error) {
	f.calls++
	return f.answer, f.err
}

func (f *generatorFake) GenerateFromPrompt(context.Context, string) (string, error) {
	return f.answer, f.err
}

func TestAskGeneratesFromGatedChunks(t *testing.T) {
	retriever := &retrieverFake{retrieval: &domain.Retrieval{
		Outcome: domain.OutcomeOK,
		Results: []domain.ScoredResult{
			{ID: "d1:0", DocumentName: "people.txt", Text: "Alice is 30"},
			{ID: "d1:1", DocumentName: "people.txt", Text: "Alice lives in Oslo"},
			{ID: "d2:0", DocumentName: "work.txt", Text: "Bob reviews code"},
		},
	}}
	generator := &generatorFake{answer: "Alice is 30 years old."}
	uc := NewAnswerUseCase(retriever, generator)

	answer, err := uc.Ask(context.Background(), "What is Alice's age?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer.Text != "Alice is 30 years old." {
		t.Fatalf("unexpected answer text: %q", answer.Text)
	}
	if len(answer.SourceDocuments) != 2 {
		t.Fatalf("expected 2 distinct source documents, got %v", answer.SourceDocuments)
	}
	if answer.SourceDocuments[0] != "people.txt" || answer.SourceDocuments[1] != "work.txt" {
		t.Fatalf("unexpected source order: %v", answer.SourceDocuments)
	}
}

func TestAskEmptyCorpusMessageWithoutGeneration(t *testing.T) {
	retriever := &retrieverFake{retrieval: &domain.Retrieval{Outcome: domain.OutcomeEmptyCorpus}}
	generator := &generatorFake{}
	uc := NewAnswerUseCase(retriever, generator)

	answer, err := uc.Ask(context.Background(), "anything")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer.Text != msgEmptyCorpus {
		t.Fatalf("unexpected empty-corpus message: %q", answer.Text)
	}
	if generator.calls != 0 {
		t.Fatal("generator must not run without grounded chunks")
	}
}

func TestAskNoConfidentResultMessageWithoutGeneration(t *testing.T) {
	retriever := &retrieverFake{retrieval: &domain.Retrieval{Outcome: domain.OutcomeNoConfidentResult}}
	generator := &generatorFake{}
	uc := NewAnswerUseCase(retriever, generator)

	answer, err := uc.Ask(context.Background(), "anything")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer.Text != msgNoConfidentResult {
		t.Fatalf("unexpected no-confident-result message: %q", answer.Text)
	}
	if generator.calls != 0 {
		t.Fatal("generator must not run without grounded chunks")
	}
}

func TestAskPropagatesRetrievalFault(t *testing.T) {
	retriever := &retrieverFake{err: errors.New("upstream fault")}
	uc := NewAnswerUseCase(retriever, &generatorFake{})

	if _, err := uc.Ask(context.Background(), "anything"); err == nil {
		t.Fatal("expected retrieval fault to propagate")
	}
}
