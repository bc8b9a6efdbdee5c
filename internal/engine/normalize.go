package engine

import "strings"

// normalized carries the two views of the input text: the lowercased
// form used for lexicon matching and the original form used for
// structural analysis.
type normalized struct {
	lower    string
	original string
}

// normalize concatenates subject and body with a single separating space
// and lowercases the result with locale-independent ASCII folding.
// Non-ASCII runes pass through unchanged. Empty inputs are valid.
func normalize(subject, body string) normalized {
	original := subject + " " + body
	return normalized{
		lower:    toLowerASCII(original),
		original: original,
	}
}

// toLowerASCII folds only the bytes 'A'-'Z'. Unicode case folding is
// deliberately not used: lexicons are ASCII and folding must be
// locale-independent and byte-stable.
func toLowerASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
