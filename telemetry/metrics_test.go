package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	Init() // second call must not re-register
	if IngestsArchived == nil || SyncRuns == nil || StageDuration == nil {
		t.Fatalf("metrics not initialized")
	}
}

func TestGuardedHelpersBeforeInit(t *testing.T) {
	// Helpers must be safe even when counters are nil (unit tests exercise
	// the pipeline without Init). Init may already have run in this process,
	// so just verify the nil-guard path directly.
	inc(nil)
	ObserveStageDuration(time.Second)
	ObserveUploadDuration(time.Second)
}

func TestCorrelation(t *testing.T) {
	ctx := context.Background()
	if GetCorrelation(ctx) != "" {
		t.Fatalf("empty context should have no correlation id")
	}
	ctx = WithCorrelation(ctx, "corr-1")
	if got := GetCorrelation(ctx); got != "corr-1" {
		t.Fatalf("correlation = %q, want corr-1", got)
	}
}
