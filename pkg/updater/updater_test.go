package updater

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rbowen/asf-highlights/pkg/discovery"
)

func TestProgressCompleted(t *testing.T) {
	t.Parallel()

	progress := NewProgress(50)
	progress.Updated = 12
	progress.Failed = 3

	if got := progress.Completed(); got != 15 {
		t.Fatalf("expected 15 completed, got %d", got)
	}
}

func TestProgressShouldLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    int
		updated  int
		failed   int
		expected bool
	}{
		{
			name:     "Nothing processed yet",
			total:    50,
			expected: false,
		},
		{
			name:     "Multiple of the log interval",
			total:    50,
			updated:  8,
			failed:   2,
			expected: true,
		},
		{
			name:     "Between log intervals",
			total:    50,
			updated:  7,
			expected: false,
		},
		{
			name:     "Batch finished",
			total:    10,
			updated:  10,
			expected: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			progress := NewProgress(tt.total)
			progress.Updated = tt.updated
			progress.Failed = tt.failed

			if got := progress.shouldLog(); got != tt.expected {
				t.Fatalf("shouldLog() = %t, expected %t", got, tt.expected)
			}
		})
	}
}

func TestProgressLogsAfterInterval(t *testing.T) {
	t.Parallel()

	progress := NewProgress(50)
	progress.Updated = 7
	progress.lastLog = time.Now().Add(-progressInterval - time.Second)

	if !progress.shouldLog() {
		t.Fatal("expected a progress line once the log interval elapsed")
	}
}

func TestUpdateAllCountsFailures(t *testing.T) {
	t.Parallel()

	updater := New(zap.NewNop().Sugar())
	repos := []discovery.Repo{
		{Path: t.TempDir(), Project: "spark"},
		{Path: t.TempDir(), Project: "flink"},
	}

	// Neither path is a git repository; both updates fail but the batch
	// still completes.
	progress := updater.UpdateAll(context.Background(), repos)
	if progress.Failed != 2 || progress.Updated != 0 {
		t.Fatalf("expected 2 failures, got %d failed and %d updated", progress.Failed, progress.Updated)
	}
}

func TestUpdateAllHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	updater := New(zap.NewNop().Sugar())
	repos := []discovery.Repo{{Path: t.TempDir(), Project: "spark"}}

	progress := updater.UpdateAll(ctx, repos)
	if progress.Completed() != 0 {
		t.Fatalf("expected no repositories processed after cancellation, got %d", progress.Completed())
	}
}
