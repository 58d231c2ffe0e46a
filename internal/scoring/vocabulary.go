package scoring

import (
	"fmt"
	"math"
)

// CategoryLowVocabulary flags a transcript with few distinct words.
const CategoryLowVocabulary = "Low vocabulary diversity"

const lowRichnessThreshold = 0.4

// AnalyzeVocabulary computes the unique-word ratio of tokens.
func AnalyzeVocabulary(tokens []string) VocabAnalysis {
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}

	va := VocabAnalysis{Unique: len(unique), Total: len(tokens)}
	if va.Total > 0 {
		va.Richness = float64(va.Unique) / float64(va.Total)
	}
	if va.Richness < lowRichnessThreshold {
		va.Issues = append(va.Issues, Issue{
			Category: CategoryLowVocabulary,
			Detail:   fmt.Sprintf("Only %d%% unique words", int(math.Round(va.Richness*100))),
		})
	}
	return va
}
