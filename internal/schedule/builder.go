// Package schedule turns workout templates into concrete exercise lists.
package schedule

import (
	"log/slog"
	"sort"

	"github.com/hpungsan/bromo/internal/catalog"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/picker"
)

// Builder fills workout templates using a picker.Engine.
type Builder struct {
	engine *picker.Engine
	logger *slog.Logger
}

// NewBuilder returns a Builder. A nil logger discards output.
func NewBuilder(engine *picker.Engine, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{engine: engine, logger: logger}
}

// Engine returns the engine used for picks.
func (b *Builder) Engine() *picker.Engine { return b.engine }

// Build picks one lift per slot of the named template. exclude seeds the
// exclusion set; every chosen name is added to it before the next slot is
// filled. The result is sorted by slot order.
func (b *Builder) Build(workout string, exclude []string) (Schedule, error) {
	tmpl, ok := b.engine.Catalog().Workout(workout)
	if !ok {
		return Schedule{}, errors.NewUnknownWorkout(workout)
	}

	excl := picker.NewExclusions(exclude...)
	s := Schedule{Workout: workout, Exercises: make([]Exercise, 0, len(tmpl))}

	for _, slotID := range tmpl.SlotNames() {
		slot := tmpl[slotID]
		sel, err := b.engine.Pick(slot.Category, slot.DirectionAndGroup, excl)
		if err != nil {
			return Schedule{}, err
		}
		if sel.Fallback {
			b.logger.Debug("exclusions ignored",
				"workout", workout, "slot", slotID, "lift", sel.Lift.Name)
		}
		s.Exercises = append(s.Exercises, Exercise{
			Name:        sel.Lift.Name,
			SetsAndReps: slot.SetsAndReps,
			SlotID:      slotID,
			Order:       slot.Order,
		})
		excl.Add(sel.Lift.Name)
	}

	sort.SliceStable(s.Exercises, func(i, j int) bool {
		if s.Exercises[i].Order != s.Exercises[j].Order {
			return s.Exercises[i].Order < s.Exercises[j].Order
		}
		return s.Exercises[i].SlotID < s.Exercises[j].SlotID
	})
	return s, nil
}

// ReplaceOne returns a copy of s with the lift in slotID re-picked. Every
// name already in s and every word in extra are excluded. The slot keeps its
// sets and reps.
//
// The slot's category and direction come from the schedule's template. For
// schedules whose template is unknown, they come from the catalog lift that
// currently fills the slot.
func (b *Builder) ReplaceOne(s Schedule, slotID string, extra []string) (Schedule, error) {
	idx := s.Slot(slotID)
	if idx < 0 {
		return Schedule{}, errors.NewNotFound("slot", slotID)
	}

	pair, ok := b.slotPair(s, idx)
	if !ok {
		return Schedule{}, errors.NewInvalidRequest(
			"cannot resolve category for slot " + slotID + ": workout and lift are both unknown")
	}

	excl := picker.NewExclusions(extra...)
	for _, name := range s.Names() {
		excl.Add(name)
	}

	sel, err := b.engine.Pick(pair.Category, pair.DirectionAndGroup, excl)
	if err != nil {
		return Schedule{}, err
	}
	if sel.Fallback {
		b.logger.Debug("exclusions ignored on replace",
			"workout", s.Workout, "slot", slotID, "lift", sel.Lift.Name)
	}

	out := s.clone()
	out.Exercises[idx].Name = sel.Lift.Name
	return out, nil
}

func (b *Builder) slotPair(s Schedule, idx int) (catalog.Pair, bool) {
	c := b.engine.Catalog()
	if tmpl, ok := c.Workout(s.Workout); ok {
		if slot, ok := tmpl[s.Exercises[idx].SlotID]; ok {
			return catalog.Pair{Category: slot.Category, DirectionAndGroup: slot.DirectionAndGroup}, true
		}
	}
	name := s.Exercises[idx].Name
	for i := 0; i < c.Len(); i++ {
		if l := c.Lift(i); l.Name == name {
			return catalog.Pair{Category: l.Category, DirectionAndGroup: l.DirectionAndGroup}, true
		}
	}
	return catalog.Pair{}, false
}
