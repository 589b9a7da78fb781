package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/HerbHall/lankaportal/pkg/content"
)

// MatchText reports whether text occurs in a record name. The EN entry is
// compared case-insensitively with Unicode case folding. Sinhala has no case,
// so the SI entry is an exact substring match after NFC normalization (the
// same syllable can be typed with different code point sequences).
//
// Only the empty string matches everything; whitespace is matched literally.
func MatchText(name content.LocalizedText, text string) bool {
	if text == "" {
		return true
	}

	// cases.Caser is stateful, so build one per call.
	fold := cases.Fold()
	if strings.Contains(fold.String(name.Get(content.LangEN)), fold.String(text)) {
		return true
	}
	return strings.Contains(norm.NFC.String(name.Get(content.LangSI)), norm.NFC.String(text))
}
