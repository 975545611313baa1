// Package redis mirrors the latest usage summary into Redis so out-of-process
// consumers (status bars, dashboards) can read it without talking to the
// daemon.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cursorwatch/cursorwatch/pkg/usage"
)

const summaryKey = "cursorwatch:summary"

// Envelope is the stored value: the summary plus when it was fetched and
// where it came from.
type Envelope struct {
	Summary   *usage.UsageSummary `json:"summary"`
	Source    string              `json:"source"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// SummaryMirror writes the single latest summary under a fixed key.
type SummaryMirror struct {
	client *redis.Client
}

// NewSummaryMirror wraps an existing Redis client.
func NewSummaryMirror(client *redis.Client) *SummaryMirror {
	return &SummaryMirror{client: client}
}

// Set overwrites the mirrored summary.
func (m *SummaryMirror) Set(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal summary envelope: %w", err)
	}
	if err := m.client.Set(ctx, summaryKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to SET %s: %w", summaryKey, err)
	}
	return nil
}

// Get returns the mirrored summary, with ok=false when nothing is stored.
func (m *SummaryMirror) Get(ctx context.Context) (Envelope, bool, error) {
	data, err := m.client.Get(ctx, summaryKey).Result()
	if err != nil {
		if err == redis.Nil {
			return Envelope{}, false, nil
		}
		return Envelope{}, false, fmt.Errorf("failed to GET %s: %w", summaryKey, err)
	}
	var env Envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return Envelope{}, false, fmt.Errorf("failed to unmarshal summary envelope: %w", err)
	}
	return env, true, nil
}

// Clear removes the mirrored summary, e.g. on token rotation.
func (m *SummaryMirror) Clear(ctx context.Context) error {
	if err := m.client.Del(ctx, summaryKey).Err(); err != nil {
		return fmt.Errorf("failed to DEL %s: %w", summaryKey, err)
	}
	return nil
}
