package match

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns the ratio of matching characters between a and b, ignoring case.
//
// The value is 2*M/T where M is the total size of the matching blocks found by
// difflib's SequenceMatcher (with its default autojunk heuristic) and T is the
// combined length of both strings. Two empty strings are identical (1.0).
// The blocks are searched with a as the reference sequence.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(strings.ToLower(a)), splitRunes(strings.ToLower(b))).Ratio()
}

// splitRunes breaks a string into one element per character
func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
