package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/schedule"
)

// ResampleInput identifies the slot to re-pick.
type ResampleInput struct {
	Schedule schedule.Schedule
	SlotID   string
	Exclude  []string
}

// ResampleOutput contains the updated schedule.
type ResampleOutput struct {
	Schedule    schedule.Schedule `json:"schedule"`
	SlotID      string            `json:"slot_id"`
	Previous    string            `json:"previous"`
	Replacement string            `json:"replacement"`
}

// Resample replaces the lift in one slot, avoiding every name already in the
// schedule and every configured or stored filter word.
func Resample(ctx context.Context, database *sql.DB, cfg *config.Config, b *schedule.Builder, input ResampleInput) (*ResampleOutput, error) {
	slotID := strings.TrimSpace(input.SlotID)
	if slotID == "" {
		return nil, errors.NewInvalidRequest("slot_id is required")
	}
	if len(input.Schedule.Exercises) == 0 {
		return nil, errors.NewInvalidRequest("schedule has no exercises")
	}

	words, err := ExclusionWords(ctx, database, cfg, input.Exclude)
	if err != nil {
		return nil, err
	}

	idx := input.Schedule.Slot(slotID)
	if idx < 0 {
		return nil, errors.NewNotFound("slot", slotID)
	}
	previous := input.Schedule.Exercises[idx].Name

	s, err := b.ReplaceOne(input.Schedule, slotID, words)
	if err != nil {
		return nil, err
	}
	return &ResampleOutput{
		Schedule:    s,
		SlotID:      slotID,
		Previous:    previous,
		Replacement: s.Exercises[idx].Name,
	}, nil
}
