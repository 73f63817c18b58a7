package picker

import (
	"sort"
	"strings"
)

// Exclusions is a set of case-folded words. A lift is excluded when its
// folded name contains any word as a substring. The set only grows.
type Exclusions struct {
	words map[string]struct{}
}

// NewExclusions returns a set seeded with words.
func NewExclusions(words ...string) *Exclusions {
	x := &Exclusions{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		x.Add(w)
	}
	return x
}

// Add inserts the folded form of word. Blank words are ignored since the
// empty string is a substring of every name.
func (x *Exclusions) Add(word string) {
	w := Fold(strings.TrimSpace(word))
	if w == "" {
		return
	}
	x.words[w] = struct{}{}
}

// Len returns the number of distinct words.
func (x *Exclusions) Len() int {
	if x == nil {
		return 0
	}
	return len(x.words)
}

// Words returns the folded words in lexical order.
func (x *Exclusions) Words() []string {
	if x == nil {
		return nil
	}
	out := make([]string, 0, len(x.words))
	for w := range x.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Excludes reports whether name contains any word of the set.
func (x *Exclusions) Excludes(name string) bool {
	return x.excludesFolded(Fold(name))
}

func (x *Exclusions) excludesFolded(folded string) bool {
	if x == nil {
		return false
	}
	for w := range x.words {
		if strings.Contains(folded, w) {
			return true
		}
	}
	return false
}
