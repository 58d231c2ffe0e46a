package scoring

var corrections = map[string]string{
	CategorySubjectVerb:   `Ensure the verb agrees with the subject (e.g., "I am" not "I is")`,
	"Incorrect tense":     "Use consistent tense",
	CategoryPastTense:     "Use correct past tense",
	CategoryArticle:       `Use "an" before vowels`,
	CategoryRedundantPrep: "Remove the unnecessary preposition",
}

// SuggestedCorrection returns a short hint for a grammar category, or "" when
// none is known.
func SuggestedCorrection(category string) string {
	return corrections[category]
}
