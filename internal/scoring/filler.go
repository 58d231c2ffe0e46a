package scoring

import (
	"fmt"
	"regexp"
)

// CategoryFiller is the category of filler word issues.
const CategoryFiller = "Filler word"

// FillerWords is the filler vocabulary. Multi-word phrases are matched as a
// unit; overlapping phrases ("so" and "so to speak") are counted separately.
var FillerWords = []string{
	"um", "uh", "err", "erm", "uhh", "umm", "ugh",
	"like", "you know", "i mean", "well", "so", "anyway",
	"basically", "actually", "literally", "sort of", "kind of",
	"maybe", "probably", "possibly", "perhaps", "i think",
	"really", "very much", "quite", "rather", "somewhat",
	"just", "namely", "so to speak", "after all",
}

type fillerPattern struct {
	phrase string
	re     *regexp.Regexp
}

var fillerPatterns = compileFillers(FillerWords)

func compileFillers(words []string) []fillerPattern {
	patterns := make([]fillerPattern, len(words))
	for i, w := range words {
		patterns[i] = fillerPattern{
			phrase: w,
			re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`),
		}
	}
	return patterns
}

// DetectFillers counts filler phrases in lower and reports one Issue per
// phrase that occurs. totalWords is the token count used for the percentage.
func DetectFillers(lower string, totalWords int) FillerAnalysis {
	var fa FillerAnalysis
	for _, p := range fillerPatterns {
		n := len(p.re.FindAllStringIndex(lower, -1))
		if n == 0 {
			continue
		}
		fa.Count += n
		fa.Issues = append(fa.Issues, Issue{
			Category: CategoryFiller,
			Detail:   fmt.Sprintf("%q used %d time(s)", p.phrase, n),
		})
	}
	if totalWords > 0 {
		fa.Percentage = float64(fa.Count) / float64(totalWords) * 100
	}
	return fa
}
