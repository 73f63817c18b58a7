// Package picker selects lifts from a catalog by weighted random sampling.
//
// A lift's weight is its rating plus a bonus for names made of rare tokens,
// so that families of similarly named lifts ("Barbell Row", "Barbell Curl",
// "Barbell Shrug") do not crowd out distinctive ones.
package picker

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/hpungsan/bromo/internal/catalog"
	"github.com/hpungsan/bromo/internal/errors"
)

// Selection is the result of a single pick.
type Selection struct {
	Lift  catalog.Lift
	Index int
	// Fallback is set when every candidate was excluded and the pick ignored
	// the exclusion set.
	Fallback bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand makes the engine draw from r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// Engine is safe for concurrent use once constructed.
type Engine struct {
	catalog  *catalog.Catalog
	stats    *Stats
	weights  []float64
	logProbs []float64
	folded   []string
	groups   map[catalog.Pair][]int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine precomputes token statistics and sampling weights for c.
func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:  c,
		stats:    NewStats(c.Names()),
		weights:  make([]float64, c.Len()),
		logProbs: make([]float64, c.Len()),
		folded:   make([]string, c.Len()),
		groups:   make(map[catalog.Pair][]int),
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := 0; i < c.Len(); i++ {
		l := c.Lift(i)
		lp := e.stats.LogProbability(Tokenize(l.Name))
		e.logProbs[i] = lp
		e.weights[i] = weight(l.Rating, lp)
		e.folded[i] = Fold(l.Name)
		key := catalog.Pair{Category: l.Category, DirectionAndGroup: l.DirectionAndGroup}
		e.groups[key] = append(e.groups[key], i)
	}
	return e
}

// weight is rating minus log-probability, floored at rating. The floor only
// applies to corpora where one token fills most positions and would
// otherwise push the log-probability above zero.
func weight(rating int, logProb float64) float64 {
	w := float64(rating) - logProb
	if math.IsNaN(w) || w < float64(rating) {
		return float64(rating)
	}
	return w
}

// Catalog returns the catalog the engine was built from.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Stats returns the token statistics over the catalog.
func (e *Engine) Stats() *Stats { return e.stats }

// Weight returns the sampling weight of the lift at index i.
func (e *Engine) Weight(i int) float64 { return e.weights[i] }

// LogProbability returns the cached log-probability of the lift at index i.
func (e *Engine) LogProbability(i int) float64 { return e.logProbs[i] }

// Candidates returns the indices of lifts matching category and
// directionAndGroup that excl does not exclude.
func (e *Engine) Candidates(category, directionAndGroup string, excl *Exclusions) []int {
	var out []int
	for _, i := range e.groups[catalog.Pair{Category: category, DirectionAndGroup: directionAndGroup}] {
		if !excl.excludesFolded(e.folded[i]) {
			out = append(out, i)
		}
	}
	return out
}

// Pick draws one lift with the exact category and directionAndGroup whose
// name avoids every word in excl. If exclusions leave nothing, the draw
// ignores them. It returns a NO_CANDIDATES error when no lift has the
// requested category and directionAndGroup at all. excl may be nil.
func (e *Engine) Pick(category, directionAndGroup string, excl *Exclusions) (Selection, error) {
	all := e.groups[catalog.Pair{Category: category, DirectionAndGroup: directionAndGroup}]
	if len(all) == 0 {
		return Selection{}, errors.NewNoCandidates(category, directionAndGroup)
	}

	candidates := e.Candidates(category, directionAndGroup, excl)
	fallback := len(candidates) == 0
	if fallback {
		candidates = all
	}

	i := e.draw(candidates)
	return Selection{Lift: e.catalog.Lift(i), Index: i, Fallback: fallback}, nil
}

// draw returns the first candidate whose cumulative weight exceeds a uniform
// draw from [0, total).
func (e *Engine) draw(candidates []int) int {
	var total float64
	for _, i := range candidates {
		total += e.weights[i]
	}

	u := e.uniform() * total
	var acc float64
	for _, i := range candidates {
		acc += e.weights[i]
		if acc > u {
			return i
		}
	}
	return candidates[len(candidates)-1]
}

func (e *Engine) uniform() float64 {
	if e.rng == nil {
		return rand.Float64()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}
