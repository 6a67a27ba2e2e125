package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/memory-map/internal/camera"
	"github.com/couchcryptid/memory-map/internal/pill"
)

func TestRuntime_SerializesCommandsAndTicks(t *testing.T) {
	f := newFixture(t, true, camera.DefaultOptions())
	rt := NewRuntime(f.app, f.clock, 16*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	var startErr error
	require.NoError(t, rt.Do(ctx, func(a *App) { startErr = a.Start("") }))
	require.NoError(t, startErr)

	require.NoError(t, rt.Dispatch(ctx, SetFilter{Term: "festival"}))
	s, err := rt.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Filtered)
	assert.Equal(t, `1 memory matching "festival"`, s.Counter)

	err = rt.Dispatch(ctx, GoToRecord{ID: 99})
	assert.ErrorIs(t, err, camera.ErrUnknownRecord)

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	require.NoError(t, f.clock.BlockUntilContext(waitCtx, 1))
	f.clock.Advance(pill.DefaultTiming().Dwell)

	require.Eventually(t, func() bool {
		s, err := rt.Snapshot(ctx)
		return err == nil && s.PillRecord != 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runtime did not stop")
	}

	assert.ErrorIs(t, rt.Dispatch(context.Background(), MapClick{}), ErrStopped)
	assert.Equal(t, pill.Stopped, f.app.Snapshot().Pill)
}

func TestRuntime_DoHonoursContext(t *testing.T) {
	f := newFixture(t, true, camera.DefaultOptions())
	rt := NewRuntime(f.app, f.clock, 16*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, rt.Do(ctx, func(*App) {}), context.Canceled)
}

func TestRuntime_DoWaitsForAcceptedWork(t *testing.T) {
	f := newFixture(t, true, camera.DefaultOptions())
	rt := NewRuntime(f.app, f.clock, 16*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = rt.Run(runCtx) }()

	callCtx, cancelCall := context.WithCancel(context.Background())
	entered := make(chan struct{})
	release := make(chan struct{})
	var wrote bool
	result := make(chan error, 1)
	go func() {
		result <- rt.Do(callCtx, func(*App) {
			close(entered)
			<-release
			wrote = true
		})
	}()

	<-entered
	cancelCall()
	select {
	case err := <-result:
		t.Fatalf("Do returned before the accepted work finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-result)
	assert.True(t, wrote)
}
