// Package textfilter cleans engine output for family-friendly
// adventures. Whether it runs at all depends on the adventure's
// content rating; see RatingFiltered.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps each filtered word to a tamer stand-in. The key
// set doubles as the word list.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"badass":       "tough",
	"bullshit":     "baloney",
	"goddamn":      "gosh-dang",
	"motherfucker": "mother-trucker",
	"prick":        "jerk",
	"dickhead":     "jerk",
	"shithead":     "jerk",
	"whore":        "[censored]",
	"slut":         "[censored]",
}

// Filter rewrites profanity in narration text while keeping the
// original casing. Safe for concurrent use.
type Filter struct {
	patterns map[string]*regexp.Regexp
}

func New() *Filter {
	f := &Filter{patterns: make(map[string]*regexp.Regexp, len(replacements))}
	for word := range replacements {
		f.patterns[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return f
}

// Clean returns text with every filtered word replaced.
func (f *Filter) Clean(text string) string {
	result := text
	for word, re := range f.patterns {
		replacement := replacements[word]
		result = re.ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return result
}

// Contains reports whether text has at least one filtered word.
func (f *Filter) Contains(text string) bool {
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// preserveCase shapes replacement to match the casing of original:
// all-caps stays all-caps, title case stays title case, and anything
// else is matched rune by rune.
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	originalRunes := []rune(original)
	result := make([]rune, 0, len(replacement))
	for i, r := range replacement {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}

// RatingFiltered reports whether an adventure's content rating calls
// for filtering. Unknown or empty ratings are left unfiltered.
func RatingFiltered(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}
