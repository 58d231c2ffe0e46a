package scoring

import (
	"fmt"
	"strings"
)

// Fluency issue categories.
const (
	CategoryShortResponse = "Very short response"
	CategoryRunOn         = "Run-on sentence"
)

const (
	minResponseWords = 10
	maxSentenceWords = 25
)

// DetectFluencyIssues flags a response shorter than ten words and every
// sentence longer than twenty-five words.
func DetectFluencyIssues(tokens, sentences []string) []Issue {
	var issues []Issue
	if len(tokens) < minResponseWords {
		issues = append(issues, Issue{
			Category: CategoryShortResponse,
			Detail:   fmt.Sprintf("Only %d words", len(tokens)),
		})
	}
	for _, s := range sentences {
		if n := len(strings.Fields(s)); n > maxSentenceWords {
			issues = append(issues, Issue{
				Category: CategoryRunOn,
				Detail:   fmt.Sprintf("%d words without pause", n),
			})
		}
	}
	return issues
}

func countCategory(issues []Issue, category string) int {
	n := 0
	for _, i := range issues {
		if i.Category == category {
			n++
		}
	}
	return n
}
