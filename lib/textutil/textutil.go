package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// suffixes the listing provider appends to re-releases and premium
// formats, none of which exist in the catalog's canonical titles
var editionSuffixRegex = regexp.MustCompile(
	`(?i)\s*(\(\d{4}\s*re-?release\)|\(re-?release\)|\(\d{4}\)|3d|imax|: the imax experience|extended (cut|edition)|director'?s cut)\s*$`,
)

// NormalizeTitle casefolds a movie title, strips punctuation and
// collapses whitespace so that two renderings of the same title compare
// equal. "It: Chapter Two" and "IT CHAPTER TWO" normalize identically.
func NormalizeTitle(title string) string {
	title = StripEditionSuffix(title)
	title = strings.ToLower(title)

	var b strings.Builder
	for _, c := range title {
		if unicode.IsLetter(c) || unicode.IsNumber(c) || c == ' ' {
			b.WriteRune(c)
		}
	}
	norm := whitespaceRegex.ReplaceAllString(b.String(), "")
	return strings.Trim(norm, " \n\t")
}

// StripEditionSuffix removes trailing edition/format markers so a
// listing row for a re-release still matches its catalog title.
func StripEditionSuffix(title string) string {
	for {
		stripped := editionSuffixRegex.ReplaceAllString(title, "")
		if stripped == title {
			return title
		}
		title = stripped
	}
}

// ContainsNormalized reports whether needle appears inside haystack
// after both have been normalized.
func ContainsNormalized(haystack, needle string) bool {
	needle = NormalizeTitle(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(NormalizeTitle(haystack), needle)
}
