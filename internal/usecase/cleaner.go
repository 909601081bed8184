package usecase

import (
	"regexp"
	"strings"
)

// Ordered longest first so "can you tell me about" wins over "tell me about".
var fillerPrefixes = []string{
	"can you tell me about ",
	"i want to know about ",
	"do you know about ",
	"tell me about ",
	"what about ",
	"also ",
	"and ",
}

var synonyms = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`\bwi[- ]fi\b`), "wifi"},
	{regexp.MustCompile(`\bcancel\b`), "cancellation"},
}

var spaceRe = regexp.MustCompile(`\s+`)

// Normalize is applied to both FAQ questions and user queries; the two sides
// must never be cleaned differently.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = spaceRe.ReplaceAllString(s, " ")
	for stripped := true; stripped; {
		stripped = false
		for _, p := range fillerPrefixes {
			if strings.HasPrefix(s, p) {
				s = strings.TrimSpace(strings.TrimPrefix(s, p))
				stripped = true
			}
		}
	}
	for _, syn := range synonyms {
		s = syn.pattern.ReplaceAllString(s, syn.replace)
	}
	return s
}

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

func tokenize(s string) []string {
	return wordRe.FindAllString(strings.ToLower(s), -1)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func hasWord(s string, words []string) bool {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, tok := range tokenize(s) {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}
