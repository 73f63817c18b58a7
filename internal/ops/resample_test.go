package ops

import (
	"testing"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/schedule"
)

func TestResample_ReplacesOnlyTargetSlot(t *testing.T) {
	b := newTestBuilder(t)
	cfg := config.DefaultConfig()
	ctx := t.Context()

	gen, err := Generate(ctx, nil, cfg, b, GenerateInput{Workout: "Lower Push Hypertrophy"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	out, err := Resample(ctx, nil, cfg, b, ResampleInput{Schedule: gen.Schedule, SlotID: "Secondary"})
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if out.Previous == out.Replacement {
		t.Errorf("Replacement = Previous = %q", out.Replacement)
	}

	before := gen.Schedule.Exercises
	after := out.Schedule.Exercises
	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i].SlotID == "Secondary" {
			if after[i].Name != out.Replacement {
				t.Errorf("slot name = %q, want %q", after[i].Name, out.Replacement)
			}
			continue
		}
		if after[i] != before[i] {
			t.Errorf("slot %s changed: %+v -> %+v", before[i].SlotID, before[i], after[i])
		}
	}
}

func TestResample_Errors(t *testing.T) {
	b := newTestBuilder(t)
	cfg := config.DefaultConfig()
	ctx := t.Context()
	s := schedule.Schedule{Workout: "Upper Push Test", Exercises: []schedule.Exercise{
		{Name: "Plank", SetsAndReps: "2x10", SlotID: "Core", Order: 5},
	}}

	if _, err := Resample(ctx, nil, cfg, b, ResampleInput{Schedule: s}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("missing slot_id error = %v, want INVALID_REQUEST", err)
	}
	if _, err := Resample(ctx, nil, cfg, b, ResampleInput{SlotID: "Core"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty schedule error = %v, want INVALID_REQUEST", err)
	}
	if _, err := Resample(ctx, nil, cfg, b, ResampleInput{Schedule: s, SlotID: "Primary"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown slot error = %v, want NOT_FOUND", err)
	}
}
