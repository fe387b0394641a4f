// Package textfilter cleans generated NPC dialogue before it reaches the
// player. Replies come back from the dialogue provider as free text and
// sometimes carry markdown markup or language that doesn't fit a game
// played by all ages.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words softened in NPC replies. The mansion's ghosts keep it family friendly.
var softenings = map[string]string{
	"damn":     "dang",
	"goddamn":  "gosh-dang",
	"hell":     "heck",
	"ass":      "butt",
	"asshole":  "jerk",
	"bastard":  "scoundrel",
	"bitch":    "wretch",
	"crap":     "rubbish",
	"shit":     "rot",
	"bullshit": "nonsense",
	"fuck":     "curse",
	"piss":     "vex",
}

var (
	markdownEmphasis = regexp.MustCompile(`(\*{1,3}|_{1,3}|~{2})([^*_~]+?)(\*{1,3}|_{1,3}|~{2})`)
	codeFence        = regexp.MustCompile("(?s)```.*?```")
	inlineCode       = regexp.MustCompile("`([^`]*)`")
	blankRuns        = regexp.MustCompile(`\n{3,}`)
)

// Sanitizer normalizes dialogue text. Safe for concurrent use.
type Sanitizer struct {
	patterns map[string]*regexp.Regexp
	titler   cases.Caser
}

func NewSanitizer() *Sanitizer {
	s := &Sanitizer{
		patterns: make(map[string]*regexp.Regexp, len(softenings)),
		titler:   cases.Title(language.English),
	}
	for word := range softenings {
		s.patterns[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return s
}

// Clean strips markup, collapses whitespace and softens language. The result
// is plain prose suitable for the transcript.
func (s *Sanitizer) Clean(text string) string {
	out := codeFence.ReplaceAllString(text, "")
	out = inlineCode.ReplaceAllString(out, "$1")
	// Run the emphasis pattern twice to unwrap nested markers like **_word_**.
	out = markdownEmphasis.ReplaceAllString(out, "$2")
	out = markdownEmphasis.ReplaceAllString(out, "$2")

	for word, replacement := range softenings {
		out = s.patterns[word].ReplaceAllStringFunc(out, func(match string) string {
			return s.matchCase(match, replacement)
		})
	}

	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// matchCase copies the casing shape of the original word onto the
// replacement: ALL CAPS stays shouted, Title stays Title.
func (s *Sanitizer) matchCase(original, replacement string) string {
	switch {
	case original == strings.ToUpper(original):
		return strings.ToUpper(replacement)
	case original == strings.ToLower(original):
		return replacement
	default:
		if r := []rune(original); len(r) > 0 && unicode.IsUpper(r[0]) {
			return s.titler.String(replacement)
		}
		return replacement
	}
}
