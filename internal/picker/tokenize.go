package picker

import (
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stopwords are dropped from lift names before counting tokens.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
		"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
		"between", "both", "but", "by", "can", "did", "do", "does", "doing", "down",
		"during", "each", "few", "for", "from", "further", "had", "has", "have",
		"having", "he", "her", "here", "hers", "him", "his", "how", "i", "if", "in",
		"into", "is", "it", "its", "just", "me", "more", "most", "my", "no", "nor",
		"not", "now", "of", "off", "on", "once", "only", "or", "other", "our", "out",
		"over", "own", "same", "she", "should", "so", "some", "such", "than", "that",
		"the", "their", "them", "then", "there", "these", "they", "this", "those",
		"through", "to", "too", "under", "until", "up", "very", "was", "we", "were",
		"what", "when", "where", "which", "while", "who", "whom", "why", "will",
		"with", "within", "without", "you", "your",
	} {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether the lower-cased word is ignored by Tokenize.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Tokenize lower-cases name, splits it on Unicode word boundaries and returns
// the word segments that are not stopwords. Punctuation and whitespace
// segments are dropped.
func Tokenize(name string) []string {
	lowered := cases.Lower(language.Und).String(name)

	var tokens []string
	state := -1
	rest := lowered
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		if !isWordlike(word) || IsStopword(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func isWordlike(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Fold returns the case-folded form used for exclusion matching.
func Fold(s string) string {
	return cases.Fold().String(s)
}
