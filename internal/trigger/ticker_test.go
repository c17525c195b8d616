package trigger

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunTicker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var fired atomic.Int32
	done := make(chan error, 1)

	go func() { done <- RunTicker(ctx, 5*time.Millisecond, func() { fired.Add(1) }) }()

	require.Eventually(t, func() bool { return fired.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRunTicker_InvalidInterval(t *testing.T) {
	require.Error(t, RunTicker(context.Background(), 0, func() {}))
}
