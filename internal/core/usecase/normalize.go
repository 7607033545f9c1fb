package usecase

import "github.com/gaffoor434/knowledge-base/internal/core/domain"

// Raw lexical and vector scores live on incomparable scales, so min-max
// normalization is always applied per source, never across both.

func normalizeLexicalScores(results []domain.ScoredResult) {
	minScore, maxScore, ok := scoreRange(results, func(r domain.ScoredResult) float64 { return r.LexicalScore })
	for i := range results {
		results[i].LexicalNorm = normalize(results[i].LexicalScore, minScore, maxScore, ok)
	}
}

func normalizeVectorScores(results []domain.ScoredResult) {
	minScore, maxScore, ok := scoreRange(results, func(r domain.ScoredResult) float64 { return r.VectorScore })
	for i := range results {
		results[i].VectorNorm = normalize(results[i].VectorScore, minScore, maxScore, ok)
	}
}

func scoreRange(results []domain.ScoredResult, score func(domain.ScoredResult) float64) (float64, float64, bool) {
	if len(results) == 0 {
		return 0, 0, false
	}
	minScore := score(results[0])
	maxScore := minScore
	for _, r := range results[1:] {
		s := score(r)
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}
	return minScore, maxScore, true
}

// normalize maps a raw score into [0,1]. The degenerate case (all scores
// equal, including all-zero) maps to 0.0.
func normalize(score, minScore, maxScore float64, ok bool) float64 {
	if !ok || maxScore == minScore {
		return 0.0
	}
	return (score - minScore) / (maxScore - minScore)
}
