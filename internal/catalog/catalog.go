// Package catalog holds the immutable lift and workout template data that
// every schedule is drawn from.
package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/bromo/internal/errors"
)

//go:embed data/lifts.json data/workouts.json
var defaultData embed.FS

// Lift is a single selectable exercise.
type Lift struct {
	Name              string   `json:"name" yaml:"name"`
	Rating            int      `json:"rating" yaml:"rating"`
	Equipment         []string `json:"equipment" yaml:"equipment"`
	Category          string   `json:"category" yaml:"category"`
	DirectionAndGroup string   `json:"direction_and_group,omitempty" yaml:"direction_and_group,omitempty"`
}

// Slot is one exercise position inside a workout template.
type Slot struct {
	Category          string `json:"category" yaml:"category"`
	DirectionAndGroup string `json:"direction_and_group,omitempty" yaml:"direction_and_group,omitempty"`
	Order             int    `json:"order" yaml:"order"`
	SetsAndReps       string `json:"sets and reps" yaml:"sets and reps"`
}

// Workout maps slot names to slot templates.
type Workout map[string]Slot

// SlotNames returns the workout's slot names in lexical order.
func (w Workout) SlotNames() []string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pair is a (category, directionAndGroup) selection key.
type Pair struct {
	Category          string `json:"category"`
	DirectionAndGroup string `json:"direction_and_group"`
}

// Catalog is the read-only set of lifts and workout templates.
// A lift's identity is its index in Lifts.
type Catalog struct {
	lifts    []Lift
	workouts map[string]Workout
}

// New validates lifts and workouts and returns a Catalog owning copies of them.
// Missing directionAndGroup values default to the category.
func New(lifts []Lift, workouts map[string]Workout) (*Catalog, error) {
	c := &Catalog{
		lifts:    make([]Lift, len(lifts)),
		workouts: make(map[string]Workout, len(workouts)),
	}

	type key struct{ name, category, direction string }
	seen := make(map[key]int, len(lifts))

	for i, l := range lifts {
		l.Name = strings.TrimSpace(l.Name)
		if l.Name == "" {
			return nil, errors.NewCatalogInvalid("lifts", fmt.Sprintf("lift %d: name is required", i))
		}
		if l.Rating <= 0 {
			return nil, errors.NewCatalogInvalid("lifts", fmt.Sprintf("lift %q: rating must be positive, got %d", l.Name, l.Rating))
		}
		if l.Category == "" {
			return nil, errors.NewCatalogInvalid("lifts", fmt.Sprintf("lift %q: category is required", l.Name))
		}
		if l.DirectionAndGroup == "" {
			l.DirectionAndGroup = l.Category
		}
		k := key{l.Name, l.Category, l.DirectionAndGroup}
		if prev, ok := seen[k]; ok {
			return nil, errors.NewCatalogInvalid("lifts", fmt.Sprintf("lift %q duplicates lift %d", l.Name, prev))
		}
		seen[k] = i
		l.Equipment = append([]string(nil), l.Equipment...)
		c.lifts[i] = l
	}

	for name, w := range workouts {
		if name == "" {
			return nil, errors.NewCatalogInvalid("workouts", "workout name is required")
		}
		if len(w) == 0 {
			return nil, errors.NewCatalogInvalid("workouts", fmt.Sprintf("workout %q has no slots", name))
		}
		copied := make(Workout, len(w))
		for slotName, s := range w {
			if s.Category == "" {
				return nil, errors.NewCatalogInvalid("workouts", fmt.Sprintf("workout %q slot %q: category is required", name, slotName))
			}
			if s.DirectionAndGroup == "" {
				s.DirectionAndGroup = s.Category
			}
			copied[slotName] = s
		}
		c.workouts[name] = copied
	}

	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load("", "")
}

// Load reads lifts and workouts from files. An empty path selects the embedded
// default for that half. Files ending in .yaml or .yml are decoded as YAML,
// everything else as JSON.
func Load(liftsPath, workoutsPath string) (*Catalog, error) {
	var lifts []Lift
	if err := decodeSource(liftsPath, "data/lifts.json", &lifts); err != nil {
		return nil, err
	}
	var workouts map[string]Workout
	if err := decodeSource(workoutsPath, "data/workouts.json", &workouts); err != nil {
		return nil, err
	}
	return New(lifts, workouts)
}

func decodeSource(path, embedded string, v any) error {
	var (
		data   []byte
		source = path
		err    error
	)
	if path == "" {
		source = filepath.Base(embedded)
		data, err = defaultData.ReadFile(embedded)
	} else {
		data, err = os.ReadFile(path)
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if err != nil {
		return errors.NewInternal(fmt.Errorf("reading %s: %w", source, err))
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.NewDecoder(bytes.NewReader(data)).Decode(v)
	}
	if err != nil {
		return errors.NewCatalogInvalid(source, err.Error())
	}
	return nil
}

// Len returns the number of lifts.
func (c *Catalog) Len() int { return len(c.lifts) }

// Lift returns the lift at index i.
func (c *Catalog) Lift(i int) Lift { return c.lifts[i] }

// Lifts returns a copy of all lifts in catalog order.
func (c *Catalog) Lifts() []Lift {
	return append([]Lift(nil), c.lifts...)
}

// Names returns every lift name in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.lifts))
	for i, l := range c.lifts {
		names[i] = l.Name
	}
	return names
}

// Workout returns the template registered under name.
func (c *Catalog) Workout(name string) (Workout, bool) {
	w, ok := c.workouts[name]
	return w, ok
}

// WorkoutNames returns every template name in lexical order.
func (c *Catalog) WorkoutNames() []string {
	names := make([]string, 0, len(c.workouts))
	for name := range c.workouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pairs returns the distinct (category, directionAndGroup) pairs of the lifts,
// in first-seen order.
func (c *Catalog) Pairs() []Pair {
	seen := make(map[Pair]bool)
	var pairs []Pair
	for _, l := range c.lifts {
		p := Pair{l.Category, l.DirectionAndGroup}
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// Uncovered returns slot pairs that no lift satisfies, sorted. A well-authored
// catalog returns none.
func (c *Catalog) Uncovered() []Pair {
	have := make(map[Pair]bool)
	for _, p := range c.Pairs() {
		have[p] = true
	}
	missing := make(map[Pair]bool)
	for _, w := range c.workouts {
		for _, s := range w {
			p := Pair{s.Category, s.DirectionAndGroup}
			if !have[p] {
				missing[p] = true
			}
		}
	}
	out := make([]Pair, 0, len(missing))
	for p := range missing {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].DirectionAndGroup < out[j].DirectionAndGroup
	})
	return out
}
