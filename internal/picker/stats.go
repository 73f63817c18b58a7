package picker

import "math"

// Stats is a unigram model over every token of every lift name. It scores a
// name by how likely its token set is under independent per-token occurrence
// probabilities; names built from common tokens score high.
type Stats struct {
	numTokens    int
	counts       map[string]int
	emptyLogProb float64
}

// NewStats counts the tokens of names.
func NewStats(names []string) *Stats {
	s := &Stats{counts: make(map[string]int)}
	for _, name := range names {
		for _, tok := range Tokenize(name) {
			s.counts[tok]++
			s.numTokens++
		}
	}

	denom := float64(s.numTokens + 1)
	for _, c := range s.counts {
		s.emptyLogProb += math.Log1p(-float64(c) / denom)
	}
	return s
}

// NumTokens returns the total token count of the corpus.
func (s *Stats) NumTokens() int { return s.numTokens }

// Count returns how often tok occurs in the corpus.
func (s *Stats) Count(tok string) int { return s.counts[tok] }

// EmptyLogProbability is the log-probability of a name with no tokens.
func (s *Stats) EmptyLogProbability() float64 { return s.emptyLogProb }

// LogProbability scores a token list. Tokens absent from the corpus are
// treated as if they occurred numTokens times.
func (s *Stats) LogProbability(tokens []string) float64 {
	lp := s.emptyLogProb
	denom := float64(s.numTokens + 1)
	for _, tok := range tokens {
		c, ok := s.counts[tok]
		if !ok {
			c = s.numTokens
		}
		if c == 0 {
			continue
		}
		p := float64(c) / denom
		lp += math.Log(p) - math.Log1p(-p)
	}
	return lp
}
