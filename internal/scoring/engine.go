package scoring

import "strings"

// Engine scores transcripts against a compiled grammar rule set.
// The zero value is not usable; construct with New or NewWithRules.
type Engine struct {
	rules *RuleSet
}

// New returns an Engine using DefaultRules.
func New() *Engine {
	return &Engine{rules: defaultRuleSet}
}

// NewWithRules returns an Engine using a custom rule table. It fails with a
// *MalformedRuleError when a pattern does not compile.
func NewWithRules(rules []Rule) (*Engine, error) {
	rs, err := CompileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: rs}, nil
}

// Score grades transcript. durationSeconds only feeds the words-per-minute
// metric. It returns ErrEmptyInput when transcript is blank.
func (e *Engine) Score(transcript string, durationSeconds float64) (*ScoreResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyInput
	}

	lex := Normalize(transcript)
	totalWords := len(lex.Tokens)

	grammarErrors := e.rules.detect(transcript, lex.Lower)
	fluency := DetectFluencyIssues(lex.Tokens, lex.Sentences)
	fillers := DetectFillers(lex.Lower, totalWords)
	vocab := AnalyzeVocabulary(lex.Tokens)

	grammarScore, gb := GrammarAccuracy(grammarErrors, lex.Tokens, lex.Sentences)
	confidenceScore, cb := ConfidenceLevel(ConfidenceInput{
		FillerPercentage: fillers.Percentage,
		Vocab:            vocab,
		Tokens:           lex.Tokens,
		Sentences:        lex.Sentences,
		TotalWords:       totalWords,
		FluencyIssues:    fluency,
		GrammarErrors:    len(grammarErrors),
	})
	overall := OverallPerformance(grammarScore, confidenceScore)

	var wpm float64
	if durationSeconds > 0 {
		wpm = float64(totalWords) / durationSeconds * 60
	}

	return &ScoreResult{
		GrammarAccuracy:    grammarScore,
		ConfidenceLevel:    confidenceScore,
		OverallPerformance: overall,
		Feedback:           FeedbackFor(overall),
		GrammarErrors:      grammarErrors,
		FluencyIssues:      fluency,
		FillerIssues:       fillers.Issues,
		VocabIssues:        vocab.Issues,
		Metrics: Metrics{
			TotalWords:       totalWords,
			FillerCount:      fillers.Count,
			FillerPercentage: fillers.Percentage,
			VocabRichness:    vocab.Richness,
			DurationSeconds:  durationSeconds,
			WordsPerMinute:   wpm,
		},
		Breakdown: Breakdown{Grammar: gb, Confidence: cb},
	}, nil
}

var defaultEngine = New()

// Score grades transcript with the default engine.
func Score(transcript string, durationSeconds float64) (*ScoreResult, error) {
	return defaultEngine.Score(transcript, durationSeconds)
}
