package schedule

import (
	"fmt"
	"strings"
)

// Markdown renders the schedule as a sheet with one table row per exercise.
func (s Schedule) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Workout)
	b.WriteString("| # | Slot | Exercise | Sets | Reps |\n")
	b.WriteString("|---|------|----------|------|------|\n")
	for i, e := range s.Exercises {
		fmt.Fprintf(&b, "| %d | %s | %s | %d | %d |\n",
			i+1, escapeCell(e.SlotID), escapeCell(e.Name), e.Sets(), e.Reps())
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
