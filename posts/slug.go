package posts

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var hyphenRuns = regexp.MustCompile(`-+`)

// GenerateSlug derives a URL slug from a title: accents are stripped,
// everything outside [a-z0-9 -] is dropped, and whitespace collapses to
// single hyphens.
func GenerateSlug(title string) string {
	decomposed := norm.NFD.String(strings.ToLower(title))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from decomposition
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
