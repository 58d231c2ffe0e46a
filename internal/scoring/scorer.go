package scoring

import "math"

const (
	// capScore bounds confidence when fillers or grammar errors dominate.
	capScore            = 70
	capFillerPercentage = 15
	capGrammarErrors    = 4
)

// GrammarAccuracy scores grammar on a 0–100 scale. The error penalty grows
// quadratically with the error count: n*(5+n).
func GrammarAccuracy(grammarErrors []Issue, tokens, sentences []string) (int, GrammarBreakdown) {
	n := len(grammarErrors)
	r := repeatedWordCount(tokens)
	avg := avgWordsPerSentence(len(tokens), len(sentences))

	b := GrammarBreakdown{
		ErrorCount:          n,
		ErrorPenalty:        n * (5 + n),
		RepeatedWords:       r,
		RepetitionPenalty:   r * (3 + r),
		AvgWordsPerSentence: avg,
		SentencePenalty:     sentenceBalancePenalty(avg, 8),
	}

	score := 100 - b.ErrorPenalty - b.RepetitionPenalty - b.SentencePenalty
	return clampRound(float64(score)), b
}

// ConfidenceInput carries the analyzer outputs the confidence scorer reads.
type ConfidenceInput struct {
	FillerPercentage float64
	Vocab            VocabAnalysis
	Tokens           []string
	Sentences        []string
	TotalWords       int
	FluencyIssues    []Issue
	GrammarErrors    int
}

// ConfidenceLevel scores delivery confidence on a 0–100 scale. Penalties are
// subtracted in a fixed order, then the cap rule limits the score to 70 when
// fillers exceed 15% of words or there are more than four grammar errors.
func ConfidenceLevel(in ConfidenceInput) (int, ConfidenceBreakdown) {
	var b ConfidenceBreakdown

	b.FillerPenalty = fillerTierPenalty(in.FillerPercentage)
	b.VocabPenalty = vocabTierPenalty(in.Vocab.Richness)
	if r := repeatedWordCount(in.Tokens); r > 0 {
		b.RepetitionPenalty = r * (3 + r)
	}
	b.SentencePenalty = sentenceBalancePenalty(avgWordsPerSentence(in.TotalWords, len(in.Sentences)), 6)
	b.RunOnPenalty = min(15, countCategory(in.FluencyIssues, CategoryRunOn)*5)
	b.LengthPenalty = lengthPenalty(in.TotalWords)

	score := 100 - b.FillerPenalty - b.VocabPenalty - b.RepetitionPenalty -
		b.SentencePenalty - b.RunOnPenalty - b.LengthPenalty

	if in.FillerPercentage > capFillerPercentage || in.GrammarErrors > capGrammarErrors {
		if score > capScore {
			score = capScore
		}
		b.Capped = true
	}
	return clampRound(float64(score)), b
}

func fillerTierPenalty(pct float64) int {
	switch {
	case pct > 20:
		return 40
	case pct > 10:
		return 25
	case pct > 5:
		return 12
	case pct > 0:
		return 5
	default:
		return 0
	}
}

func vocabTierPenalty(richness float64) int {
	switch {
	case richness < 0.4:
		return 30
	case richness < 0.5:
		return 20
	case richness < 0.6:
		return 10
	default:
		return 0
	}
}

func lengthPenalty(totalWords int) int {
	switch {
	case totalWords < 12:
		return 18
	case totalWords < 20:
		return 8
	default:
		return 0
	}
}

// repeatedWordCount returns how many distinct tokens longer than two
// characters occur more than twice.
func repeatedWordCount(tokens []string) int {
	freq := make(map[string]int)
	for _, t := range tokens {
		if len(t) > 2 {
			freq[t]++
		}
	}
	n := 0
	for _, c := range freq {
		if c > 2 {
			n++
		}
	}
	return n
}

func avgWordsPerSentence(totalWords, sentenceCount int) float64 {
	return float64(totalWords) / float64(max(1, sentenceCount))
}

// sentenceBalancePenalty charges 20 outside [6, 30] words per sentence and
// inner outside [8, 20].
func sentenceBalancePenalty(avg float64, inner int) int {
	switch {
	case avg < 6 || avg > 30:
		return 20
	case avg < 8 || avg > 20:
		return inner
	default:
		return 0
	}
}

func clampRound(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
