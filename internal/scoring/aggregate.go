package scoring

import "math"

// OverallPerformance is the rounded mean of the two sub-scores.
func OverallPerformance(grammarAccuracy, confidenceLevel int) int {
	return int(math.Round(float64(grammarAccuracy+confidenceLevel) / 2))
}

// FeedbackFor maps an overall score onto its feedback tier.
func FeedbackFor(overall int) Feedback {
	switch {
	case overall >= 80:
		return FeedbackExcellent
	case overall >= 70:
		return FeedbackGood
	case overall >= 50:
		return FeedbackModerate
	default:
		return FeedbackNeedsPractice
	}
}
