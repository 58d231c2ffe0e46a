package scoring

import "testing"

func TestFillerTierPenalty(t *testing.T) {
	tests := []struct {
		pct  float64
		want int
	}{
		{0, 0}, {0.1, 5}, {5, 5}, {5.01, 12}, {10, 12}, {10.5, 25}, {20, 25}, {20.1, 40}, {100, 40},
	}
	for _, tt := range tests {
		if got := fillerTierPenalty(tt.pct); got != tt.want {
			t.Errorf("fillerTierPenalty(%v) = %d, want %d", tt.pct, got, tt.want)
		}
	}
}

func TestVocabTierPenalty(t *testing.T) {
	tests := []struct {
		richness float64
		want     int
	}{
		{0, 30}, {0.39, 30}, {0.4, 20}, {0.49, 20}, {0.5, 10}, {0.59, 10}, {0.6, 0}, {1, 0},
	}
	for _, tt := range tests {
		if got := vocabTierPenalty(tt.richness); got != tt.want {
			t.Errorf("vocabTierPenalty(%v) = %d, want %d", tt.richness, got, tt.want)
		}
	}
}

func TestSentenceBalancePenalty(t *testing.T) {
	tests := []struct {
		avg  float64
		want int
	}{
		{0, 20}, {5.9, 20}, {6, 8}, {7.9, 8}, {8, 0}, {20, 0}, {20.5, 8}, {30, 8}, {30.1, 20},
	}
	for _, tt := range tests {
		if got := sentenceBalancePenalty(tt.avg, 8); got != tt.want {
			t.Errorf("sentenceBalancePenalty(%v) = %d, want %d", tt.avg, got, tt.want)
		}
	}
}

func TestLengthPenalty(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 18}, {11, 18}, {12, 8}, {19, 8}, {20, 0},
	}
	for _, tt := range tests {
		if got := lengthPenalty(tt.words); got != tt.want {
			t.Errorf("lengthPenalty(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestRepeatedWordCount(t *testing.T) {
	tokens := []string{"the", "the", "the", "cat", "cat", "cat", "cat", "is", "is", "is", "dog"}
	// "is" is too short to count.
	if got := repeatedWordCount(tokens); got != 2 {
		t.Errorf("repeatedWordCount = %d, want 2", got)
	}
}

func TestGrammarAccuracy(t *testing.T) {
	tokens := []string{"the", "the", "the", "cat", "sat", "on", "mat", "today"}
	errs := []Issue{{CategoryRepeatedWord, "the the"}, {CategoryArticle, "a a"}}

	score, b := GrammarAccuracy(errs, tokens, []string{"one sentence"})

	// errors 2*(5+2)=14, repetition 1*(3+1)=4, avg 8 -> 0
	if b.ErrorPenalty != 14 || b.RepetitionPenalty != 4 || b.SentencePenalty != 0 {
		t.Errorf("unexpected breakdown %+v", b)
	}
	if score != 82 {
		t.Errorf("score = %d, want 82", score)
	}
}

func TestGrammarAccuracy_ClampsAtZero(t *testing.T) {
	errs := make([]Issue, 12)
	score, b := GrammarAccuracy(errs, nil, nil)
	if b.ErrorPenalty != 12*17 {
		t.Errorf("error penalty = %d, want %d", b.ErrorPenalty, 12*17)
	}
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
}

func TestGrammarAccuracy_EmptyInputs(t *testing.T) {
	score, b := GrammarAccuracy(nil, nil, nil)
	// avg 0 words per sentence is outside the outer band.
	if b.SentencePenalty != 20 || score != 80 {
		t.Errorf("score = %d breakdown = %+v, want 80 with sentence penalty 20", score, b)
	}
}

func TestConfidenceLevel(t *testing.T) {
	tests := []struct {
		name       string
		in         ConfidenceInput
		want       int
		wantCapped bool
	}{
		{
			name: "tiers add up",
			in: ConfidenceInput{
				FillerPercentage: 12,
				Vocab:            VocabAnalysis{Richness: 0.45},
				Sentences:        []string{"s"},
				TotalWords:       15,
			},
			// 100 - 25 - 20 - 8
			want: 47,
		},
		{
			name: "cap on grammar errors",
			in: ConfidenceInput{
				Vocab:         VocabAnalysis{Richness: 1},
				Sentences:     []string{"a", "b"},
				TotalWords:    24,
				GrammarErrors: 5,
			},
			want:       70,
			wantCapped: true,
		},
		{
			name: "cap flag set below cap",
			in: ConfidenceInput{
				FillerPercentage: 16,
				Vocab:            VocabAnalysis{Richness: 0.3},
				Sentences:        []string{"a"},
				TotalWords:       12,
			},
			// 100 - 25 - 30 - 8, then the flag is set without lowering further
			want:       37,
			wantCapped: true,
		},
		{
			name: "run-on penalty is bounded",
			in: ConfidenceInput{
				Vocab:      VocabAnalysis{Richness: 1},
				Sentences:  []string{"a", "b", "c", "d"},
				TotalWords: 80,
				FluencyIssues: []Issue{
					{CategoryRunOn, "26 words without pause"},
					{CategoryRunOn, "26 words without pause"},
					{CategoryRunOn, "26 words without pause"},
					{CategoryRunOn, "26 words without pause"},
				},
			},
			// 100 - 15 (avg 20 is inside the band)
			want: 85,
		},
		{
			name: "floor at zero",
			in: ConfidenceInput{
				FillerPercentage: 50,
				Vocab:            VocabAnalysis{Richness: 0.1},
				Tokens:           []string{"word", "word", "word", "more", "more", "more", "last", "last", "last"},
				Sentences:        nil,
				TotalWords:       9,
			},
			want:       0,
			wantCapped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, b := ConfidenceLevel(tt.in)
			if got != tt.want {
				t.Errorf("ConfidenceLevel = %d, want %d (breakdown %+v)", got, tt.want, b)
			}
			if b.Capped != tt.wantCapped {
				t.Errorf("capped = %v, want %v", b.Capped, tt.wantCapped)
			}
		})
	}
}

func TestFeedbackFor(t *testing.T) {
	tests := []struct {
		overall int
		want    Feedback
	}{
		{100, FeedbackExcellent}, {80, FeedbackExcellent}, {79, FeedbackGood}, {70, FeedbackGood},
		{69, FeedbackModerate}, {50, FeedbackModerate}, {49, FeedbackNeedsPractice}, {0, FeedbackNeedsPractice},
	}
	for _, tt := range tests {
		if got := FeedbackFor(tt.overall); got != tt.want {
			t.Errorf("FeedbackFor(%d) = %q, want %q", tt.overall, got, tt.want)
		}
	}
}

func TestOverallPerformance_RoundsHalfUp(t *testing.T) {
	if got := OverallPerformance(92, 89); got != 91 {
		t.Errorf("OverallPerformance(92, 89) = %d, want 91", got)
	}
	if got := OverallPerformance(0, 1); got != 1 {
		t.Errorf("OverallPerformance(0, 1) = %d, want 1", got)
	}
}

func TestSuggestedCorrection(t *testing.T) {
	if got := SuggestedCorrection(CategoryArticle); got != `Use "an" before vowels` {
		t.Errorf("unexpected correction %q", got)
	}
	if got := SuggestedCorrection(CategoryRepeatedWord); got != "" {
		t.Errorf("expected no correction, got %q", got)
	}
}
