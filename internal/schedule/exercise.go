package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Exercise is one filled slot of a schedule, or one logged set when built
// from a log entry.
type Exercise struct {
	Name        string     `json:"name"`
	SetsAndReps string     `json:"sets_and_reps"`
	SlotID      string     `json:"slot_id,omitempty"`
	Order       int        `json:"order,omitempty"`
	Weight      *int       `json:"weight,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// Schedule is the ordered exercise list generated for one workout template.
type Schedule struct {
	Workout   string     `json:"workout"`
	Exercises []Exercise `json:"exercises"`
}

// FromLog builds an exercise from a logged performance. It has no slot.
func FromLog(name string, sets, reps, weight int, at time.Time) Exercise {
	return Exercise{
		Name:        name,
		SetsAndReps: CombineSetsAndReps(sets, reps),
		Weight:      &weight,
		Date:        &at,
	}
}

// Sets returns the set count encoded in SetsAndReps.
func (e Exercise) Sets() int {
	sets, _ := SplitSetsAndReps(e.SetsAndReps)
	return sets
}

// Reps returns the rep count encoded in SetsAndReps.
func (e Exercise) Reps() int {
	_, reps := SplitSetsAndReps(e.SetsAndReps)
	return reps
}

// SetSets rewrites SetsAndReps with a new set count.
func (e *Exercise) SetSets(sets int) {
	e.SetsAndReps = CombineSetsAndReps(sets, e.Reps())
}

// SetReps rewrites SetsAndReps with a new rep count.
func (e *Exercise) SetReps(reps int) {
	e.SetsAndReps = CombineSetsAndReps(e.Sets(), reps)
}

// SplitSetsAndReps parses "<sets>x<reps>". The first and last "x"-separated
// fields are used; fields that are not integers read as 0.
func SplitSetsAndReps(s string) (sets, reps int) {
	parts := strings.Split(s, "x")
	sets, _ = strconv.Atoi(parts[0])
	reps, _ = strconv.Atoi(parts[len(parts)-1])
	return sets, reps
}

// CombineSetsAndReps formats sets and reps as "<sets>x<reps>".
func CombineSetsAndReps(sets, reps int) string {
	return fmt.Sprintf("%dx%d", sets, reps)
}

// Names returns the exercise names in schedule order.
func (s Schedule) Names() []string {
	names := make([]string, len(s.Exercises))
	for i, e := range s.Exercises {
		names[i] = e.Name
	}
	return names
}

// Slot returns the index of the exercise filling slotID, or -1.
func (s Schedule) Slot(slotID string) int {
	for i, e := range s.Exercises {
		if e.SlotID == slotID {
			return i
		}
	}
	return -1
}

func (s Schedule) clone() Schedule {
	out := Schedule{Workout: s.Workout, Exercises: make([]Exercise, len(s.Exercises))}
	copy(out.Exercises, s.Exercises)
	return out
}
