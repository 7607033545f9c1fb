package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
	"github.com/gaffoor434/knowledge-base/internal/core/ports"
)

// RetrievalParams carries every tunable of the ranking pipeline. The
// historical defaults diverged between revisions, so all of them come from
// configuration.
type RetrievalParams struct {
	LexicalWeight    float64
	VectorWeight     float64
	CandidateTopK    int
	SubqueryMinScore float64
	MinCombinedScore float64
	RequireBoth      bool
	ComponentFloor   float64
	FinalTopN        int
	ExpansionEnabled bool
}

func (p RetrievalParams) normalize() RetrievalParams {
	out := p
	if out.LexicalWeight <= 0 && out.VectorWeight <= 0 {
		out.LexicalWeight = 0.5
		out.VectorWeight = 0.5
	}
	if out.CandidateTopK <= 0 {
		out.CandidateTopK = 7
	}
	if out.FinalTopN <= 0 {
		out.FinalTopN = 8
	}
	return out
}

// RetrieveUseCase sequences query expansion, per-sub-query hybrid search,
// fusion, deduplication, confidence gating, optional reranking and source
// weighting into one query-to-ranked-chunks pipeline.
type RetrieveUseCase struct {
	lexical  ports.LexicalIndex
	embedder ports.Embedder
	vectorDB ports.VectorStore
	expander ports.QueryExpander
	reranker ports.Reranker
	repo     ports.DocumentRepository
	params   RetrievalParams
	logger   *slog.Logger
}

func NewRetrieveUseCase(
	lexical ports.LexicalIndex,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	expander ports.QueryExpander,
	reranker ports.Reranker,
	repo ports.DocumentRepository,
	params RetrievalParams,
	logger *slog.Logger,
) *RetrieveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrieveUseCase{
		lexical:  lexical,
		embedder: embedder,
		vectorDB: vectorDB,
		expander: expander,
		reranker: reranker,
		repo:     repo,
		params:   params.normalize(),
		logger:   logger,
	}
}

func (uc *RetrieveUseCase) Retrieve(ctx context.Context, query string) (*domain.Retrieval, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "retrieve", errors.New("empty query"))
	}

	if uc.corpusIsEmpty(ctx) {
		return &domain.Retrieval{Outcome: domain.OutcomeEmptyCorpus}, nil
	}

	subqueries := uc.expand(ctx, query)

	merged := make([]domain.ScoredResult, 0, uc.params.CandidateTopK*len(subqueries))
	for _, sq := range subqueries {
		hits, err := uc.searchSubquery(ctx, sq)
		if err != nil {
			return nil, fmt.Errorf("retrieve subquery %q: %w", sq, err)
		}
		merged = append(merged, hits...)
	}

	deduped := dedupeByID(merged)
	gated := gateResults(deduped, uc.params.MinCombinedScore, uc.params.RequireBoth, uc.params.ComponentFloor)
	if len(gated) == 0 {
		return &domain.Retrieval{Outcome: domain.OutcomeNoConfidentResult}, nil
	}

	reranked := uc.rerank(ctx, query, gated)

	weighted := applySourceWeights(gated, uc.sourceWeights(ctx), 1.0)
	return &domain.Retrieval{
		Outcome:       domain.OutcomeOK,
		Results:       trimResults(weighted, uc.params.FinalTopN),
		Reranked:      reranked,
		SubqueryCount: len(subqueries),
	}, nil
}

func (uc *RetrieveUseCase) corpusIsEmpty(ctx context.Context) bool {
	if uc.lexical.Size() > 0 {
		return false
	}
	count, err := uc.vectorDB.Count(ctx)
	if err != nil {
		uc.logger.Warn("vector store count failed", "error", err)
		return true
	}
	return count == 0
}

func (uc *RetrieveUseCase) expand(ctx context.Context, query string) []string {
	if !uc.params.ExpansionEnabled || uc.expander == nil {
		return []string{query}
	}
	subqueries := uc.expander.Expand(ctx, query)
	if len(subqueries) == 0 {
		return []string{query}
	}
	return subqueries
}

// searchSubquery runs lexical and vector retrieval concurrently against
// their immutable snapshots; both complete before fusion begins.
func (uc *RetrieveUseCase) searchSubquery(ctx context.Context, subquery string) ([]domain.ScoredResult, error) {
	var (
		lexHits []domain.ScoredResult
		vecHits []domain.ScoredResult
		vecErr  error
		wg      sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		lexHits = uc.lexical.Query(subquery, uc.params.CandidateTopK)
	}()
	go func() {
		defer wg.Done()
		vecHits, vecErr = uc.vectorSearch(ctx, subquery)
	}()
	wg.Wait()

	if vecErr != nil {
		return nil, vecErr
	}

	normalizeLexicalScores(lexHits)
	normalizeVectorScores(vecHits)
	fused := fuseResults(lexHits, vecHits, uc.params.LexicalWeight, uc.params.VectorWeight)
	fused = filterMinCombined(fused, uc.params.SubqueryMinScore)
	return trimResults(fused, uc.params.CandidateTopK), nil
}

// vectorSearch degrades to lexical-only when the embedding side is
// unavailable, but a vector store fault mid-query fails the query.
func (uc *RetrieveUseCase) vectorSearch(ctx context.Context, subquery string) ([]domain.ScoredResult, error) {
	vector, err := uc.embedder.EmbedQuery(ctx, subquery)
	if err != nil || len(vector) == 0 {
		uc.logger.Warn("embedding unavailable, degrading to lexical-only", "error", err)
		return nil, nil
	}

	hits, err := uc.vectorDB.Search(ctx, vector, uc.params.CandidateTopK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "vector search", err)
	}
	return hits, nil
}

// rerank replaces the primary ranking key with the cross-encoder score when
// the capability is available; otherwise the fused score stands in and no
// error reaches the caller. It reports whether cross-encoder scores were
// actually applied.
func (uc *RetrieveUseCase) rerank(ctx context.Context, query string, results []domain.ScoredResult) bool {
	if uc.reranker == nil || !uc.reranker.Available(ctx) {
		for i := range results {
			results[i].RerankScore = results[i].Combined
		}
		return false
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	scores, err := uc.reranker.Rerank(ctx, query, texts)
	if err != nil || len(scores) != len(results) {
		uc.logger.Warn("rerank failed, falling back to fused scores", "error", err)
		for i := range results {
			results[i].RerankScore = results[i].Combined
		}
		return false
	}
	for i := range results {
		results[i].RerankScore = scores[i]
	}
	return true
}

func (uc *RetrieveUseCase) sourceWeights(ctx context.Context) map[string]float64 {
	if uc.repo == nil {
		return nil
	}
	weights, err := uc.repo.SourceWeights(ctx)
	if err != nil {
		uc.logger.Warn("loading source weights failed, using defaults", "error", err)
		return nil
	}
	return weights
}
