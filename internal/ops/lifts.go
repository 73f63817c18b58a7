package ops

import (
	"github.com/hpungsan/bromo/internal/picker"
)

// LiftsInput filters the lift listing. Empty fields match everything.
type LiftsInput struct {
	Category          string
	DirectionAndGroup string
	Exclude           []string
}

// LiftSummary is one catalog lift with its sampling weight.
type LiftSummary struct {
	Index             int      `json:"index"`
	Name              string   `json:"name"`
	Rating            int      `json:"rating"`
	Equipment         []string `json:"equipment"`
	Category          string   `json:"category"`
	DirectionAndGroup string   `json:"direction_and_group"`
	Weight            float64  `json:"weight"`
	LogProbability    float64  `json:"log_probability"`
	Excluded          bool     `json:"excluded,omitempty"`
}

// LiftsOutput lists matching lifts.
type LiftsOutput struct {
	Lifts     []LiftSummary `json:"lifts"`
	NumTokens int           `json:"num_tokens"`
}

// Lifts lists catalog lifts in catalog order.
func Lifts(e *picker.Engine, input LiftsInput) *LiftsOutput {
	excl := picker.NewExclusions(input.Exclude...)
	c := e.Catalog()

	out := &LiftsOutput{Lifts: []LiftSummary{}, NumTokens: e.Stats().NumTokens()}
	for i := 0; i < c.Len(); i++ {
		l := c.Lift(i)
		if input.Category != "" && l.Category != input.Category {
			continue
		}
		if input.DirectionAndGroup != "" && l.DirectionAndGroup != input.DirectionAndGroup {
			continue
		}
		out.Lifts = append(out.Lifts, LiftSummary{
			Index:             i,
			Name:              l.Name,
			Rating:            l.Rating,
			Equipment:         l.Equipment,
			Category:          l.Category,
			DirectionAndGroup: l.DirectionAndGroup,
			Weight:            e.Weight(i),
			LogProbability:    e.LogProbability(i),
			Excluded:          excl.Excludes(l.Name),
		})
	}
	return out
}
