package capture

import (
	"fmt"
	"slices"
)

// DefaultLanguage is used when a capture request names no language.
const DefaultLanguage = "en-US"

// SupportedLanguages are the recognizer locales a capture may use. Scoring
// rules are English-only regardless of the capture language.
var SupportedLanguages = []string{"en-US", "ta-IN", "hi-IN"}

// IsSupportedLanguage reports whether lang is a supported capture locale.
func IsSupportedLanguage(lang string) bool {
	return slices.Contains(SupportedLanguages, lang)
}

// ResolveLanguage returns lang, DefaultLanguage when lang is empty, or an
// *UnsupportedLanguageError.
func ResolveLanguage(lang string) (string, error) {
	if lang == "" {
		return DefaultLanguage, nil
	}
	if !IsSupportedLanguage(lang) {
		return "", &UnsupportedLanguageError{Language: lang}
	}
	return lang, nil
}

// UnsupportedLanguageError reports a capture language outside
// SupportedLanguages.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q (supported: %v)", e.Language, SupportedLanguages)
}
