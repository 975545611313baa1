package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cursorwatch/cursorwatch/pkg/usage"
)

func newTestMirror(t *testing.T) *SummaryMirror {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSummaryMirror(client)
}

func TestSummaryMirror_SetGetClear(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()

	if _, ok, err := m.Get(ctx); err != nil || ok {
		t.Fatalf("Expected empty mirror, got ok=%v err=%v", ok, err)
	}

	env := Envelope{
		Summary:   usage.Placeholder(),
		Source:    "fresh",
		FetchedAt: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
	if err := m.Set(ctx, env); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := m.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got.Source != "fresh" {
		t.Errorf("Unexpected source: %s", got.Source)
	}
	if !got.FetchedAt.Equal(env.FetchedAt) {
		t.Errorf("Unexpected fetchedAt: %v", got.FetchedAt)
	}
	if got.Summary.IndividualUsage.Overall.Used != 794 {
		t.Errorf("Summary did not round-trip: %+v", got.Summary.IndividualUsage.Overall)
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok, _ := m.Get(ctx); ok {
		t.Errorf("Expected mirror to be empty after Clear")
	}
}

func TestSummaryMirror_Overwrite(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()

	first := Envelope{Summary: usage.Placeholder(), Source: "placeholder", FetchedAt: time.Now()}
	if err := m.Set(ctx, first); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	live := usage.Placeholder()
	live.IndividualUsage.Overall.Used = 1200
	second := Envelope{Summary: live, Source: "fresh", FetchedAt: time.Now()}
	if err := m.Set(ctx, second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := m.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got.Summary.IndividualUsage.Overall.Used != 1200 {
		t.Errorf("Expected overwrite, got used=%v", got.Summary.IndividualUsage.Overall.Used)
	}
}
