package scoring

// Issue is a single finding reported by an analyzer.
type Issue struct {
	Category string `json:"category"`
	Detail   string `json:"detail"`
}

// VocabAnalysis summarizes lexical diversity.
type VocabAnalysis struct {
	// Richness is unique tokens divided by total tokens, in [0, 1].
	Richness float64 `json:"richness"`
	Unique   int     `json:"unique"`
	Total    int     `json:"total"`
	Issues   []Issue `json:"issues"`
}

// FillerAnalysis summarizes filler word usage.
type FillerAnalysis struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Issues     []Issue `json:"issues"`
}

// Feedback is the categorical label derived from the overall score.
type Feedback string

const (
	FeedbackExcellent     Feedback = "Excellent"
	FeedbackGood          Feedback = "Good"
	FeedbackModerate      Feedback = "Moderate"
	FeedbackNeedsPractice Feedback = "Needs practice"
)

// Metrics is the numeric snapshot presented alongside the scores.
type Metrics struct {
	TotalWords       int     `json:"totalWords"`
	FillerCount      int     `json:"fillerCount"`
	FillerPercentage float64 `json:"fillerPercentage"`
	VocabRichness    float64 `json:"vocabRichness"`
	DurationSeconds  float64 `json:"durationSeconds"`
	WordsPerMinute   float64 `json:"wordsPerMinute"`
}

// GrammarBreakdown lists the penalties behind a grammar accuracy score.
type GrammarBreakdown struct {
	ErrorCount          int     `json:"errorCount"`
	ErrorPenalty        int     `json:"errorPenalty"`
	RepeatedWords       int     `json:"repeatedWords"`
	RepetitionPenalty   int     `json:"repetitionPenalty"`
	AvgWordsPerSentence float64 `json:"avgWordsPerSentence"`
	SentencePenalty     int     `json:"sentencePenalty"`
}

// ConfidenceBreakdown lists the penalties behind a confidence score.
type ConfidenceBreakdown struct {
	FillerPenalty     int  `json:"fillerPenalty"`
	VocabPenalty      int  `json:"vocabPenalty"`
	RepetitionPenalty int  `json:"repetitionPenalty"`
	SentencePenalty   int  `json:"sentencePenalty"`
	RunOnPenalty      int  `json:"runOnPenalty"`
	LengthPenalty     int  `json:"lengthPenalty"`
	Capped            bool `json:"capped"`
}

// Breakdown groups both scorers' penalty details.
type Breakdown struct {
	Grammar    GrammarBreakdown    `json:"grammar"`
	Confidence ConfidenceBreakdown `json:"confidence"`
}

// ScoreResult is the engine's output for one transcript.
type ScoreResult struct {
	GrammarAccuracy    int       `json:"grammarAccuracy"`
	ConfidenceLevel    int       `json:"confidenceLevel"`
	OverallPerformance int       `json:"overallPerformance"`
	Feedback           Feedback  `json:"feedback"`
	GrammarErrors      []Issue   `json:"grammarErrors"`
	FluencyIssues      []Issue   `json:"fluencyIssues"`
	FillerIssues       []Issue   `json:"fillerIssues"`
	VocabIssues        []Issue   `json:"vocabIssues"`
	Metrics            Metrics   `json:"metrics"`
	Breakdown          Breakdown `json:"breakdown"`
}
