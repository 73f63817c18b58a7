package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Day is the training day a rotation assigns to a date.
type Day struct {
	BodyGroup string `json:"body_group"`
	Direction string `json:"direction"`
	Week      string `json:"week"`
}

// Workout returns the template name for the day, e.g. "Upper Push Strength".
func (d Day) Workout() string {
	return WorkoutName(d.BodyGroup, d.Direction, d.Week)
}

// WorkoutName joins body group, direction and week into a template name.
func WorkoutName(bodyGroup, direction, week string) string {
	return bodyGroup + " " + direction + " " + week
}

// Rotation cycles through weeks and daily routines from a reference date.
// Routine entries are "<body group> <direction>" pairs.
type Rotation struct {
	Reference time.Time
	Weeks     []string
	Routine   []string
}

// DefaultReference is the first day of the default rotation.
var DefaultReference = time.Date(2020, time.December, 7, 0, 0, 0, 0, time.UTC)

// DefaultRotation returns the four-week, four-day rotation.
func DefaultRotation() Rotation {
	return Rotation{
		Reference: DefaultReference,
		Weeks:     []string{"Recovery", "Hypertrophy", "Strength", "Test"},
		Routine:   []string{"Upper Push", "Lower Pull", "Upper Pull", "Lower Push"},
	}
}

// Validate checks that the rotation can assign a day.
func (r Rotation) Validate() error {
	if len(r.Weeks) == 0 {
		return fmt.Errorf("rotation has no weeks")
	}
	if len(r.Routine) == 0 {
		return fmt.Errorf("rotation has no routine")
	}
	for _, entry := range r.Routine {
		if len(strings.Fields(entry)) != 2 {
			return fmt.Errorf("routine entry %q must be \"<body group> <direction>\"", entry)
		}
	}
	return nil
}

// On returns the training day for the calendar date of t. Dates before the
// reference wrap around.
func (r Rotation) On(t time.Time) (Day, error) {
	if err := r.Validate(); err != nil {
		return Day{}, err
	}

	days := daysBetween(r.Reference, t)
	week := r.Weeks[floorMod(floorDiv(days, 7), len(r.Weeks))]
	fields := strings.Fields(r.Routine[floorMod(days, len(r.Routine))])
	return Day{BodyGroup: fields[0], Direction: fields[1], Week: week}, nil
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
