package usecase

import (
	"context"
	"fmt"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
	"github.com/gaffoor434/knowledge-base/internal/core/ports"
)

const (
	msgEmptyCorpus       = "No documents indexed. Please upload documents first."
	msgNoConfidentResult = "No relevant documents found. Please refine your query or upload more documents."
)

// AnswerUseCase turns a question into a grounded answer: retrieval first,
// generation only over the gated result set. The terminal retrieval
// outcomes become distinct user-facing messages, never generation input.
type AnswerUseCase struct {
	retriever ports.ChunkRetriever
	generator ports.AnswerGenerator
}

func NewAnswerUseCase(retriever ports.ChunkRetriever, generator ports.AnswerGenerator) *AnswerUseCase {
	return &AnswerUseCase{
		retriever: retriever,
		generator: generator,
	}
}

func (uc *AnswerUseCase) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	retrieval, err := uc.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}

	switch retrieval.Outcome {
	case domain.OutcomeEmptyCorpus:
		return &domain.Answer{Text: msgEmptyCorpus, SourceDocuments: []string{}}, nil
	case domain.OutcomeNoConfidentResult:
		return &domain.Answer{Text: msgNoConfidentResult, SourceDocuments: []string{}}, nil
	}

	answerText, err := uc.generator.GenerateAnswer(ctx, question, retrieval.Results)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:            answerText,
		SourceDocuments: sourceDocuments(retrieval.Results),
	}, nil
}

// sourceDocuments lists the distinct document names backing the answer, in
// ranking order.
func sourceDocuments(results []domain.ScoredResult) []string {
	seen := make(map[string]struct{}, len(results))
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.DocumentName == "" {
			continue
		}
		if _, ok := seen[r.DocumentName]; ok {
			continue
		}
		seen[r.DocumentName] = struct{}{}
		out = append(out, r.DocumentName)
	}
	return out
}
