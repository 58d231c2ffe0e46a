package scoring

import (
	"regexp"
	"strings"
)

var sentenceSeparators = regexp.MustCompile(`[.!?]+`)

// Lexicon is the normalized form of a transcript shared by all analyzers.
type Lexicon struct {
	// Lower is the full transcript, lower-cased.
	Lower string
	// Tokens are the lower-cased, whitespace-delimited words. Never contains
	// empty strings.
	Tokens []string
	// Sentences are the trimmed, non-empty pieces of the original-case
	// transcript split on runs of '.', '!' and '?'.
	Sentences []string
}

// Normalize tokenizes text into words and sentences.
// An empty text yields empty sequences.
func Normalize(text string) Lexicon {
	lower := strings.ToLower(text)
	return Lexicon{
		Lower:     lower,
		Tokens:    strings.Fields(lower),
		Sentences: splitSentences(text),
	}
}

func splitSentences(text string) []string {
	parts := sentenceSeparators.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
