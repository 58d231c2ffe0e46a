package scoring

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the transcript is empty or only whitespace.
// No scoring is attempted.
var ErrEmptyInput = errors.New("no speech to analyze")

// MalformedRuleError reports a grammar rule whose pattern does not compile.
// It indicates a programming error in the rule table.
type MalformedRuleError struct {
	Index    int
	Category string
	Pattern  string
	Err      error
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("grammar rule %d (%s): invalid pattern %q: %v", e.Index, e.Category, e.Pattern, e.Err)
}

func (e *MalformedRuleError) Unwrap() error { return e.Err }
