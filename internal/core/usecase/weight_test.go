package usecase

import (
	"testing"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

func TestApplySourceWeightsMultipliesAndResorts(t *testing.T) {
	results := []domain.ScoredResult{
		{ID: "d1:0", DocumentName: "esm_docs.docx", RerankScore: 0.6},
		{ID: "d2:0", DocumentName: "employee_data.xlsx", RerankScore: 0.7},
	}
	weights := map[string]float64{
		"esm_docs.docx":      1.3,
		"employee_data.xlsx": 0.8,
	}

	weighted := applySourceWeights(results, weights, 1.0)
	if weighted[0].ID != "d1:0" {
		t.Fatalf("expected boosted source first, got %s", weighted[0].ID)
	}
	if got := weighted[0].Weighted; got != 0.6*1.3 {
		t.Fatalf("unexpected weighted score: %v", got)
	}
	if got := weighted[1].Weighted; got != 0.7*0.8 {
		t.Fatalf("unexpected down-weighted score: %v", got)
	}
}

func TestApplySourceWeightsDefaultsToOne(t *testing.T) {
	results := []domain.ScoredResult{{ID: "d1:0", DocumentName: "unknown.pdf", RerankScore: 0.5}}
	weighted := applySourceWeights(results, nil, 1.0)
	if weighted[0].Weighted != 0.5 {
		t.Fatalf("expected default weight 1.0 applied, got %v", weighted[0].Weighted)
	}
}
