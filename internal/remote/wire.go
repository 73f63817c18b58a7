package remote

import (
	"github.com/hpungsan/bromo/internal/schedule"
)

// Request is the body POSTed to /generate. Workout is the body group and
// direction ("Upper Push"); Week is the training week ("Strength").
type Request struct {
	Workout string `json:"workout"`
	Week    string `json:"week"`
}

// Exercise is one entry of a /generate response. Type carries the slot id.
type Exercise struct {
	Name        string `json:"Exercise"`
	SetsAndReps string `json:"Sets and Reps"`
	Type        string `json:"Type"`
}

// ToSchedule converts a /generate response, keeping its order.
func ToSchedule(workout string, list []Exercise) schedule.Schedule {
	s := schedule.Schedule{Workout: workout, Exercises: make([]schedule.Exercise, 0, len(list))}
	for i, e := range list {
		s.Exercises = append(s.Exercises, schedule.Exercise{
			Name:        e.Name,
			SetsAndReps: e.SetsAndReps,
			SlotID:      e.Type,
			Order:       i + 1,
		})
	}
	return s
}

// FromSchedule converts a schedule to the /generate response form.
func FromSchedule(s schedule.Schedule) []Exercise {
	out := make([]Exercise, 0, len(s.Exercises))
	for _, e := range s.Exercises {
		out = append(out, Exercise{Name: e.Name, SetsAndReps: e.SetsAndReps, Type: e.SlotID})
	}
	return out
}
