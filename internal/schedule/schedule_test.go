package schedule

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/bromo/internal/catalog"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/picker"
)

func defaultBuilder(t *testing.T, seed uint64) *Builder {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewBuilder(picker.NewEngine(c, picker.WithRand(rand.New(rand.NewPCG(seed, seed+1)))), nil)
}

func TestSplitSetsAndReps(t *testing.T) {
	tests := []struct {
		in         string
		sets, reps int
	}{
		{"5x5", 5, 5},
		{"3x12", 3, 12},
		{"4x8x12", 4, 12},
		{"3x", 3, 0},
		{"x10", 0, 10},
		{"abc", 0, 0},
		{"", 0, 0},
		{" 3x5", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sets, reps := SplitSetsAndReps(tt.in)
			require.Equal(t, tt.sets, sets)
			require.Equal(t, tt.reps, reps)
		})
	}
}

func TestSetsAndReps_RoundTrip(t *testing.T) {
	for _, sets := range []int{0, 1, 3, 10, 125} {
		for _, reps := range []int{0, 1, 8, 20, 1000} {
			s, r := SplitSetsAndReps(CombineSetsAndReps(sets, reps))
			require.Equal(t, sets, s)
			require.Equal(t, reps, r)
		}
	}
}

func TestExercise_SetSetsAndReps(t *testing.T) {
	e := Exercise{Name: "Back Squat", SetsAndReps: "5x5"}
	e.SetSets(3)
	require.Equal(t, "3x5", e.SetsAndReps)
	e.SetReps(8)
	require.Equal(t, "3x8", e.SetsAndReps)
	require.Equal(t, 3, e.Sets())
	require.Equal(t, 8, e.Reps())
}

func TestFromLog(t *testing.T) {
	at := time.Date(2021, 3, 1, 18, 0, 0, 0, time.UTC)
	e := FromLog("Barbell Row", 4, 8, 135, at)

	require.Equal(t, "4x8", e.SetsAndReps)
	require.Empty(t, e.SlotID)
	require.NotNil(t, e.Weight)
	require.Equal(t, 135, *e.Weight)
	require.True(t, at.Equal(*e.Date))
}

func TestBuild_LengthAndOrder(t *testing.T) {
	b := defaultBuilder(t, 1)

	for _, name := range b.Engine().Catalog().WorkoutNames() {
		s, err := b.Build(name, nil)
		require.NoError(t, err, name)

		tmpl, _ := b.Engine().Catalog().Workout(name)
		require.Len(t, s.Exercises, len(tmpl))
		require.Equal(t, name, s.Workout)

		for i, e := range s.Exercises {
			slot := tmpl[e.SlotID]
			require.Equal(t, slot.Order, e.Order)
			require.Equal(t, slot.SetsAndReps, e.SetsAndReps)
			if i > 0 {
				require.LessOrEqual(t, s.Exercises[i-1].Order, e.Order)
			}
		}
	}
}

func TestBuild_UserExclusions(t *testing.T) {
	b := defaultBuilder(t, 2)

	for range 25 {
		s, err := b.Build("Upper Pull Strength", []string{"ROW"})
		require.NoError(t, err)

		primary := s.Exercises[s.Slot("Primary")]
		require.NotContains(t, strings.ToLower(primary.Name), "row")
		secondary := s.Exercises[s.Slot("Secondary")]
		require.NotContains(t, strings.ToLower(secondary.Name), "row")
	}
}

func TestBuild_FallbackWhenEverythingExcluded(t *testing.T) {
	b := defaultBuilder(t, 3)

	s, err := b.Build("Upper Pull Hypertrophy", []string{"curl"})
	require.NoError(t, err)
	require.Contains(t, strings.ToLower(s.Exercises[s.Slot("Isolation 1")].Name), "curl")
}

func TestBuild_FallbackCanDuplicate(t *testing.T) {
	c, err := catalog.New(
		[]catalog.Lift{{Name: "Plank", Rating: 1, Category: "Core"}},
		map[string]catalog.Workout{
			"Core Day": {
				"A": {Category: "Core", Order: 1, SetsAndReps: "3x30"},
				"B": {Category: "Core", Order: 2, SetsAndReps: "3x30"},
			},
		})
	require.NoError(t, err)
	b := NewBuilder(picker.NewEngine(c), nil)

	s, err := b.Build("Core Day", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Plank", "Plank"}, s.Names())
}

func TestBuild_TiesBrokenBySlotName(t *testing.T) {
	c, err := catalog.New(
		[]catalog.Lift{{Name: "Plank", Rating: 1, Category: "Core"}, {Name: "Dead Bug", Rating: 1, Category: "Core"}},
		map[string]catalog.Workout{
			"Core Day": {
				"Zeta":  {Category: "Core", Order: 1},
				"Alpha": {Category: "Core", Order: 1},
			},
		})
	require.NoError(t, err)

	s, err := NewBuilder(picker.NewEngine(c), nil).Build("Core Day", nil)
	require.NoError(t, err)
	require.Equal(t, "Alpha", s.Exercises[0].SlotID)
	require.Equal(t, "Zeta", s.Exercises[1].SlotID)
}

func TestBuild_Errors(t *testing.T) {
	b := defaultBuilder(t, 4)

	_, err := b.Build("Upper Sideways Test", nil)
	require.True(t, errors.Is(err, errors.ErrUnknownWorkout))

	c, err := catalog.New(
		[]catalog.Lift{{Name: "Plank", Rating: 1, Category: "Core"}},
		map[string]catalog.Workout{"Arms": {"Curl": {Category: "Isolation", DirectionAndGroup: "Biceps", Order: 1}}})
	require.NoError(t, err)
	_, err = NewBuilder(picker.NewEngine(c), nil).Build("Arms", nil)
	require.True(t, errors.Is(err, errors.ErrNoCandidates))
}

func TestReplaceOne_NeverReintroducesNames(t *testing.T) {
	b := defaultBuilder(t, 5)
	eng := b.Engine()

	for _, name := range eng.Catalog().WorkoutNames() {
		s, err := b.Build(name, nil)
		require.NoError(t, err)
		tmpl, _ := eng.Catalog().Workout(name)

		for _, e := range s.Exercises {
			slot := tmpl[e.SlotID]
			excl := picker.NewExclusions(s.Names()...)
			feasible := len(eng.Candidates(slot.Category, slot.DirectionAndGroup, excl)) > 0

			out, err := b.ReplaceOne(s, e.SlotID, nil)
			require.NoError(t, err)

			idx := out.Slot(e.SlotID)
			if feasible {
				require.NotContains(t, s.Names(), out.Exercises[idx].Name)
			}
			require.Equal(t, e.SetsAndReps, out.Exercises[idx].SetsAndReps)
			for i := range out.Exercises {
				if i != idx {
					require.Equal(t, s.Exercises[i], out.Exercises[i])
				}
			}
		}
	}
}

func TestReplaceOne_ExtraExclusionsAndNoMutation(t *testing.T) {
	b := defaultBuilder(t, 6)

	s, err := b.Build("Lower Pull Strength", nil)
	require.NoError(t, err)
	before := s.clone()

	for range 25 {
		out, err := b.ReplaceOne(s, "Secondary", []string{"deadlift"})
		require.NoError(t, err)
		name := out.Exercises[out.Slot("Secondary")].Name
		require.NotContains(t, strings.ToLower(name), "deadlift")
	}
	require.Equal(t, before, s)
}

func TestReplaceOne_OnlyOneCandidate(t *testing.T) {
	c, err := catalog.New(
		[]catalog.Lift{{Name: "Plank", Rating: 1, Category: "Core"}},
		map[string]catalog.Workout{"Core Day": {"A": {Category: "Core", Order: 1}}})
	require.NoError(t, err)
	b := NewBuilder(picker.NewEngine(c), nil)

	s, err := b.Build("Core Day", nil)
	require.NoError(t, err)
	out, err := b.ReplaceOne(s, "A", nil)
	require.NoError(t, err)
	require.Equal(t, "Plank", out.Exercises[0].Name)
}

func TestReplaceOne_UnknownWorkoutUsesLift(t *testing.T) {
	b := defaultBuilder(t, 7)

	s := Schedule{Exercises: []Exercise{
		{Name: "Face Pull", SetsAndReps: "3x15", SlotID: "Rear"},
	}}
	out, err := b.ReplaceOne(s, "Rear", nil)
	require.NoError(t, err)
	require.NotEqual(t, "Face Pull", out.Exercises[0].Name)

	var lift catalog.Lift
	for _, l := range b.Engine().Catalog().Lifts() {
		if l.Name == out.Exercises[0].Name {
			lift = l
		}
	}
	require.Equal(t, "Rear Delts", lift.DirectionAndGroup)
}

func TestReplaceOne_Errors(t *testing.T) {
	b := defaultBuilder(t, 8)

	s, err := b.Build("Upper Push Test", nil)
	require.NoError(t, err)

	_, err = b.ReplaceOne(s, "Nope", nil)
	require.True(t, errors.Is(err, errors.ErrNotFound))

	orphan := Schedule{Exercises: []Exercise{{Name: "Mystery Lift", SlotID: "X"}}}
	_, err = b.ReplaceOne(orphan, "X", nil)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestRotation_On(t *testing.T) {
	r := DefaultRotation()
	ref := DefaultReference

	tests := []struct {
		name string
		at   time.Time
		want Day
	}{
		{"reference", ref, Day{"Upper", "Push", "Recovery"}},
		{"same day later", ref.Add(23 * time.Hour), Day{"Upper", "Push", "Recovery"}},
		{"next day", ref.AddDate(0, 0, 1), Day{"Lower", "Pull", "Recovery"}},
		{"day six", ref.AddDate(0, 0, 6), Day{"Upper", "Pull", "Recovery"}},
		{"second week", ref.AddDate(0, 0, 7), Day{"Lower", "Push", "Hypertrophy"}},
		{"fourth week", ref.AddDate(0, 0, 21), Day{"Lower", "Pull", "Test"}},
		{"wraps after four weeks", ref.AddDate(0, 0, 28), Day{"Upper", "Push", "Recovery"}},
		{"before reference", ref.AddDate(0, 0, -1), Day{"Lower", "Push", "Test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.On(tt.at)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRotation_WorkoutsExistInCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	r := DefaultRotation()

	for d := range 28 {
		day, err := r.On(DefaultReference.AddDate(0, 0, d))
		require.NoError(t, err)
		_, ok := c.Workout(day.Workout())
		require.True(t, ok, day.Workout())
	}
}

func TestRotation_Validate(t *testing.T) {
	r := DefaultRotation()
	r.Routine = []string{"Upper"}
	_, err := r.On(time.Now())
	require.Error(t, err)

	r = DefaultRotation()
	r.Weeks = nil
	require.Error(t, r.Validate())
}

func TestWorkoutName(t *testing.T) {
	require.Equal(t, "Upper Push Strength", WorkoutName("Upper", "Push", "Strength"))
	require.Equal(t, "Lower Pull Test", Day{"Lower", "Pull", "Test"}.Workout())
}

func TestMarkdown(t *testing.T) {
	s := Schedule{
		Workout: "Upper Push Strength",
		Exercises: []Exercise{
			{Name: "Overhead Press", SetsAndReps: "5x5", SlotID: "Primary"},
			{Name: "A|B", SetsAndReps: "3x10", SlotID: "Secondary"},
		},
	}
	md := s.Markdown()
	require.True(t, strings.HasPrefix(md, "# Upper Push Strength\n"))
	require.Contains(t, md, "| 1 | Primary | Overhead Press | 5 | 5 |")
	require.Contains(t, md, `| 2 | Secondary | A\|B | 3 | 10 |`)
}
