package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_CallsFlushOnCadence(t *testing.T) {
	e := NewEngine()
	e.FlushEvery = 3

	var ticks, flushes []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnFlush = func(tick uint64) { flushes = append(flushes, tick) }

	for i := 0; i < 7; i++ {
		e.step()
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7}, ticks)
	assert.Equal(t, []uint64{3, 6}, flushes)
}

func TestRun_StopsOnCancel(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond

	var mu sync.Mutex
	count := 0
	flushedAt := uint64(0)
	e.OnTick = func(uint64) {
		mu.Lock()
		count++
		mu.Unlock()
	}
	e.OnFlush = func(tick uint64) {
		mu.Lock()
		flushedAt = tick
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 5
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, e.Running())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}

	assert.False(t, e.Running())
	mu.Lock()
	assert.Equal(t, e.Tick(), flushedAt, "final flush on shutdown")
	mu.Unlock()
}

func TestRun_PausedDoesNotTick(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	e.SetSpeed(0)
	e.OnTick = func(uint64) { t.Error("ticked while paused") }

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	assert.Zero(t, e.Tick())
}
