package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceWeightsFile seeds per-document trust multipliers at ingest time.
// Keys are document filenames; values multiply the final ranking score.
type SourceWeightsFile struct {
	Default float64            `yaml:"default"`
	Weights map[string]float64 `yaml:"weights"`
}

// LoadSourceWeights reads the YAML weights file. An empty path yields the
// defaults (every source weighted 1.0).
func LoadSourceWeights(path string) (SourceWeightsFile, error) {
	out := SourceWeightsFile{Default: 1.0, Weights: map[string]float64{}}
	if path == "" {
		return out, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read source weights file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse source weights file: %w", err)
	}
	if out.Default <= 0 {
		out.Default = 1.0
	}
	if out.Weights == nil {
		out.Weights = map[string]float64{}
	}
	return out, nil
}

// WeightFor returns the configured multiplier for a document name.
func (f SourceWeightsFile) WeightFor(documentName string) float64 {
	if w, ok := f.Weights[documentName]; ok && w > 0 {
		return w
	}
	return f.Default
}
