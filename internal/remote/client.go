// Package remote talks to a schedule generator over HTTP. The generator may
// be another bromo instance running `bromo serve` or any service speaking the
// same /generate wire format.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/schedule"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultAttempts = 3
	maxResponseSize = 1 << 20
)

// Client calls a remote /generate endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	attempts   int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry sets the attempt count and the first backoff delay. The delay
// doubles after each failed attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.backoff = backoff
	}
}

// NewClient creates a client for the generator at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.New(slog.DiscardHandler),
		attempts:   defaultAttempts,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate asks the remote generator for a full schedule. workout is the
// body group and direction ("Upper Push").
func (c *Client) Generate(ctx context.Context, workout, week string) (schedule.Schedule, error) {
	list, err := c.fetch(ctx, Request{Workout: workout, Week: week})
	if err != nil {
		return schedule.Schedule{}, err
	}
	return ToSchedule(strings.TrimSpace(workout+" "+week), list), nil
}

// Resample asks for a fresh schedule and takes only the exercise whose slot
// id is slotID. If the response has no such slot, s is returned unchanged.
func (c *Client) Resample(ctx context.Context, s schedule.Schedule, slotID, workout, week string) (schedule.Schedule, error) {
	idx := s.Slot(slotID)
	if idx < 0 {
		return schedule.Schedule{}, errors.NewNotFound("slot", slotID)
	}

	list, err := c.fetch(ctx, Request{Workout: workout, Week: week})
	if err != nil {
		return schedule.Schedule{}, err
	}

	out := schedule.Schedule{Workout: s.Workout, Exercises: append([]schedule.Exercise(nil), s.Exercises...)}
	for _, e := range list {
		if e.Type == slotID {
			out.Exercises[idx].Name = e.Name
			out.Exercises[idx].SetsAndReps = e.SetsAndReps
			return out, nil
		}
	}
	c.logger.Warn("remote response has no matching slot", "slot_id", slotID)
	return out, nil
}

func (c *Client) fetch(ctx context.Context, r Request) ([]Exercise, error) {
	if c.baseURL == "" {
		return nil, errors.NewInvalidRequest("remote_url is not configured")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var lastErr error
	delay := c.backoff
	for attempt := range c.attempts {
		if attempt > 0 {
			c.logger.Warn("retrying remote generate", "attempt", attempt+1, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, errors.NewCancelled("remote generate")
			case <-time.After(delay):
			}
			delay *= 2
		}

		list, retry, err := c.post(ctx, body)
		if err == nil {
			return list, nil
		}
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("remote generate")
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, errors.NewRemoteFailure(lastErr)
}

// post makes one request. retry reports whether a failure is worth retrying.
func (c *Client) post(ctx context.Context, body []byte) (list []Exercise, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("post /generate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("/generate returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	return list, false, nil
}
