package validation

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// similarityRatio is a normalized character-level similarity in [0,1],
// computed with difflib's SequenceMatcher over individual characters.
func similarityRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}

	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
