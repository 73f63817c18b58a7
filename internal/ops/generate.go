package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/schedule"
)

// GenerateInput selects the template to fill. Workout wins when set;
// otherwise BodyGroup, Direction and Week are combined, with any missing part
// taken from the rotation day for Date (default today).
type GenerateInput struct {
	Workout   string
	BodyGroup string
	Direction string
	Week      string
	Date      *time.Time
	Exclude   []string
}

// GenerateOutput contains the generated schedule.
type GenerateOutput struct {
	Schedule schedule.Schedule `json:"schedule"`
	Excluded []string          `json:"excluded,omitempty"`
}

// Generate builds a schedule for the requested workout.
func Generate(ctx context.Context, database *sql.DB, cfg *config.Config, b *schedule.Builder, input GenerateInput) (*GenerateOutput, error) {
	workout, err := ResolveWorkout(cfg, input)
	if err != nil {
		return nil, err
	}

	words, err := ExclusionWords(ctx, database, cfg, input.Exclude)
	if err != nil {
		return nil, err
	}

	s, err := b.Build(workout, words)
	if err != nil {
		return nil, err
	}
	return &GenerateOutput{Schedule: s, Excluded: words}, nil
}

// ResolveWorkout returns the template name GenerateInput refers to.
func ResolveWorkout(cfg *config.Config, input GenerateInput) (string, error) {
	if input.Workout != "" {
		return input.Workout, nil
	}

	if input.BodyGroup != "" && !contains(cfg.BodyGroups, input.BodyGroup) {
		return "", errors.NewInvalidRequest("unknown body group: " + input.BodyGroup)
	}
	if input.Direction != "" && !contains(cfg.MovementDirections, input.Direction) {
		return "", errors.NewInvalidRequest("unknown movement direction: " + input.Direction)
	}
	if input.Week != "" && !contains(cfg.Weeks, input.Week) {
		return "", errors.NewInvalidRequest("unknown week: " + input.Week)
	}

	day := schedule.Day{BodyGroup: input.BodyGroup, Direction: input.Direction, Week: input.Week}
	if day.BodyGroup == "" || day.Direction == "" || day.Week == "" {
		today, err := Today(cfg, input.Date)
		if err != nil {
			return "", err
		}
		if day.BodyGroup == "" {
			day.BodyGroup = today.BodyGroup
		}
		if day.Direction == "" {
			day.Direction = today.Direction
		}
		if day.Week == "" {
			day.Week = today.Week
		}
	}
	return day.Workout(), nil
}

// Today returns the rotation day for at, or for the current date when at is nil.
func Today(cfg *config.Config, at *time.Time) (schedule.Day, error) {
	r, err := cfg.Rotation()
	if err != nil {
		return schedule.Day{}, errors.NewInvalidRequest(err.Error())
	}
	t := time.Now()
	if at != nil {
		t = *at
	}
	day, err := r.On(t)
	if err != nil {
		return schedule.Day{}, errors.NewInvalidRequest(err.Error())
	}
	return day, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
