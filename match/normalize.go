package match

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	audioExtensionRegex = regexp.MustCompile(`(?i)\.(mp3|flac|wav|m4a|ogg)$`)
	leadingIndexRegex   = regexp.MustCompile(`^\p{Nd}+[\s\p{Zs}._-]+`)

	// One pattern per bracket type; nested or unbalanced brackets are left
	// for the character filter.
	bracketRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\(.*?\)`),
		regexp.MustCompile(`\[.*?\]`),
		regexp.MustCompile(`\{.*?\}`),
	}
)

// Normalize turns a raw filename or track title into its canonical form.
//
// The steps run in a fixed order: audio extension, leading playlist index,
// bracketed annotations, non-word characters, then whitespace. Case is kept;
// comparisons downstream decide on case sensitivity.
func Normalize(raw string) string {
	s := audioExtensionRegex.ReplaceAllString(raw, "")
	s = leadingIndexRegex.ReplaceAllString(s, "")
	for _, re := range bracketRegexes {
		s = re.ReplaceAllString(s, "")
	}
	s = strings.Map(keepWordOrSpace, s)
	return strings.Join(strings.Fields(s), " ")
}

// keepWordOrSpace drops every rune that is not a letter, number, underscore or whitespace
func keepWordOrSpace(r rune) rune {
	if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
		return r
	}
	return -1
}
