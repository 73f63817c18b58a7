package ops

import (
	"sort"

	"github.com/hpungsan/bromo/internal/catalog"
)

// SlotSummary describes one slot of a template.
type SlotSummary struct {
	SlotID            string `json:"slot_id"`
	Category          string `json:"category"`
	DirectionAndGroup string `json:"direction_and_group"`
	Order             int    `json:"order"`
	SetsAndReps       string `json:"sets_and_reps"`
	Candidates        int    `json:"candidates"`
}

// WorkoutSummary describes a template.
type WorkoutSummary struct {
	Name  string        `json:"name"`
	Slots []SlotSummary `json:"slots"`
}

// WorkoutsOutput lists every template in the catalog.
type WorkoutsOutput struct {
	Workouts []WorkoutSummary `json:"workouts"`
	Lifts    int              `json:"lifts"`
}

// Workouts summarizes the catalog's templates in name order, slots in
// schedule order.
func Workouts(c *catalog.Catalog) *WorkoutsOutput {
	counts := make(map[catalog.Pair]int)
	for _, l := range c.Lifts() {
		counts[catalog.Pair{Category: l.Category, DirectionAndGroup: l.DirectionAndGroup}]++
	}

	out := &WorkoutsOutput{Workouts: []WorkoutSummary{}, Lifts: c.Len()}
	for _, name := range c.WorkoutNames() {
		w, _ := c.Workout(name)
		summary := WorkoutSummary{Name: name}
		for _, slotID := range w.SlotNames() {
			s := w[slotID]
			summary.Slots = append(summary.Slots, SlotSummary{
				SlotID:            slotID,
				Category:          s.Category,
				DirectionAndGroup: s.DirectionAndGroup,
				Order:             s.Order,
				SetsAndReps:       s.SetsAndReps,
				Candidates:        counts[catalog.Pair{Category: s.Category, DirectionAndGroup: s.DirectionAndGroup}],
			})
		}
		sort.SliceStable(summary.Slots, func(i, j int) bool {
			return summary.Slots[i].Order < summary.Slots[j].Order
		})
		out.Workouts = append(out.Workouts, summary)
	}
	return out
}
