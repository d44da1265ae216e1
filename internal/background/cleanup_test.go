package background

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockCleaner struct {
	calls atomic.Int64
}

func (m *mockCleaner) ClearExpiredEphemeralTokens(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	return 3, nil
}

func TestCleanupManager_RunsImmediatelyOnStart(t *testing.T) {
	cleaner := &mockCleaner{}
	cm := NewCleanupManager(cleaner, slog.Default(), 1*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return cleaner.calls.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestCleanupManager_StopTerminates(t *testing.T) {
	cleaner := &mockCleaner{}
	cm := NewCleanupManager(cleaner, slog.Default(), 1*time.Hour)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	cm.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}
