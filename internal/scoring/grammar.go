package scoring

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Grammar error categories.
const (
	CategorySubjectVerb         = "Subject-verb agreement"
	CategoryPastTense           = "Incorrect past tense"
	CategoryArticle             = "Incorrect article usage"
	CategoryRedundantPrep       = "Redundant preposition"
	CategoryRedundantWord       = "Redundant word"
	CategoryRepeatedWord        = "Repeated word"
	CategoryDoubleNegative      = "Double negative"
	CategoryRedundantModifier   = "Redundant modifier"
	CategoryRedundantExpression = "Redundant expression"
)

// RuleKind selects how a Rule finds its matches.
type RuleKind int

const (
	// PatternRule matches with a regular expression.
	PatternRule RuleKind = iota
	// RepeatedWordRule matches a word immediately followed by itself.
	// RE2 has no back-references, so this kind is matched by a word scanner.
	RepeatedWordRule
)

// Rule associates a pattern with the category reported for each match.
// Patterns are applied to the lower-cased transcript.
type Rule struct {
	Kind     RuleKind
	Category string
	Pattern  string
}

// DefaultRules is the ordered grammar rule table.
var DefaultRules = []Rule{
	{Kind: PatternRule, Category: CategorySubjectVerb, Pattern: `\bi\s+(?:is|was|go|goes|have|has|do|does)\b`},
	{Kind: PatternRule, Category: CategorySubjectVerb, Pattern: `\bhe\s+(?:go|are|have|do)\b`},
	{Kind: PatternRule, Category: CategorySubjectVerb, Pattern: `\bshe\s+(?:go|are|have|do|don't|didn't)\b`},
	{Kind: PatternRule, Category: CategorySubjectVerb, Pattern: `\bthey\s+(?:goes|was|doesn't|has)\b`},
	{Kind: PatternRule, Category: CategorySubjectVerb, Pattern: `\bwe\s+(?:was|goes|doesn't|has)\b`},
	{Kind: PatternRule, Category: CategorySubjectVerb, Pattern: `\bit\s+(?:have|do|are)\b`},
	{Kind: PatternRule, Category: CategorySubjectVerb, Pattern: `\byou\s+(?:was|goes|doesn't)\b`},
	{Kind: PatternRule, Category: CategoryPastTense, Pattern: `\b(?:yesterday|last\s+week)\s+(?:i\s+go|he\s+go|she\s+eat)\b`},
	{Kind: PatternRule, Category: CategoryArticle, Pattern: `\ba\s+[aeiou]`},
	{Kind: PatternRule, Category: CategoryRedundantPrep, Pattern: `\bdiscuss\s+about\b`},
	{Kind: PatternRule, Category: CategoryRedundantWord, Pattern: `\breturn\s+back\b`},
	{Kind: RepeatedWordRule, Category: CategoryRepeatedWord},
	{Kind: PatternRule, Category: CategoryDoubleNegative, Pattern: `\b(?:don't|didn't|can't)\s+(?:no|nothing|never|nobody)`},
	{Kind: PatternRule, Category: CategoryRedundantModifier, Pattern: `\b(?:more|very)\s+(?:better|worse|best|worst)\b`},
	{Kind: PatternRule, Category: CategoryRedundantExpression, Pattern: `\beach\s+and\s+every\b`},
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// findAll returns the [start, end) byte offsets of every non-overlapping
// match in lower.
func (r compiledRule) findAll(lower string) [][]int {
	if r.Kind == RepeatedWordRule {
		return findRepeatedWords(lower)
	}
	return r.re.FindAllStringIndex(lower, -1)
}

// RuleSet is a compiled, ordered rule table. It is immutable and safe for
// concurrent use.
type RuleSet struct {
	rules []compiledRule
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// CompileRules compiles a rule table, preserving its order.
func CompileRules(rules []Rule) (*RuleSet, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		cr := compiledRule{Rule: r}
		if r.Kind == PatternRule {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, &MalformedRuleError{Index: i, Category: r.Category, Pattern: r.Pattern, Err: err}
			}
			cr.re = re
		}
		compiled = append(compiled, cr)
	}
	return &RuleSet{rules: compiled}, nil
}

// MustCompileRules is like CompileRules but panics on a malformed rule.
func MustCompileRules(rules []Rule) *RuleSet {
	compiled, err := CompileRules(rules)
	if err != nil {
		panic(err)
	}
	return compiled
}

var defaultRuleSet = MustCompileRules(DefaultRules)

// DetectGrammarErrors applies the default rule table to text.
func DetectGrammarErrors(text string) []Issue {
	return defaultRuleSet.detect(text, strings.ToLower(text))
}

// detect reports one Issue per match, in rule order and then
// match order. The detail is the original-case substring of the match.
func (rs *RuleSet) detect(text, lower string) []Issue {
	sameOffsets := len(text) == len(lower)
	var issues []Issue
	for _, r := range rs.rules {
		for _, loc := range r.findAll(lower) {
			phrase := lower[loc[0]:loc[1]]
			if sameOffsets {
				phrase = text[loc[0]:loc[1]]
			}
			issues = append(issues, Issue{Category: r.Category, Detail: phrase})
		}
	}
	return issues
}

type wordSpan struct {
	start, end int
}

// findRepeatedWords finds each word followed, after whitespace only, by an
// identical word. Matches do not overlap: after a pair is reported the scan
// resumes with the word following it.
func findRepeatedWords(s string) [][]int {
	words := wordSpans(s)
	var matches [][]int
	for i := 0; i+1 < len(words); {
		a, b := words[i], words[i+1]
		if s[a.start:a.end] == s[b.start:b.end] && onlySpace(s[a.end:b.start]) {
			matches = append(matches, []int{a.start, b.end})
			i += 2
			continue
		}
		i++
	}
	return matches
}

// wordSpans returns the runs of ASCII word characters ([0-9A-Za-z_]) in s.
func wordSpans(s string) []wordSpan {
	var spans []wordSpan
	start := -1
	for i := 0; i < len(s); i++ {
		if isWordByte(s[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, wordSpan{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, wordSpan{start, len(s)})
	}
	return spans
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func onlySpace(gap string) bool {
	if gap == "" {
		return false
	}
	for len(gap) > 0 {
		r, size := utf8.DecodeRuneInString(gap)
		if !unicode.IsSpace(r) {
			return false
		}
		gap = gap[size:]
	}
	return true
}
