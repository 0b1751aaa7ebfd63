// Package engine provides the real-time tick loop that drives the farm.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultFlushEvery is how many ticks pass between journal flushes.
const DefaultFlushEvery = 10

// Engine calls its callbacks on a fixed cadence.
type Engine struct {
	Interval   time.Duration // Base tick interval (default 1 second)
	FlushEvery uint64        // Ticks between OnFlush calls

	// Callbacks, populated during setup.
	OnTick  func(tick uint64) // Every tick
	OnFlush func(tick uint64) // Every FlushEvery ticks, and once on shutdown

	mu      sync.Mutex
	tick    uint64
	speed   float64 // Multiplier: 1.0 = real-time, 0 = paused
	running bool
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval:   time.Second,
		FlushEvery: DefaultFlushEvery,
		speed:      1.0,
	}
}

// Tick returns the number of ticks the engine has run.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Zero or less pauses the loop.
func (e *Engine) SetSpeed(s float64) {
	e.mu.Lock()
	e.speed = s
	e.mu.Unlock()
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run drives the loop until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("farm engine started", "tick", e.Tick(), "speed", e.Speed())

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		if e.OnFlush != nil {
			e.OnFlush(e.Tick())
		}
		slog.Info("farm engine stopped", "tick", e.Tick())
	}()

	for {
		speed := e.Speed()
		if speed <= 0 {
			// Paused; check again shortly.
			if !sleep(ctx, 100*time.Millisecond) {
				return
			}
			continue
		}

		start := time.Now()
		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			if !sleep(ctx, target-elapsed) {
				return
			}
		} else if ctx.Err() != nil {
			return
		}
	}
}

// step advances the engine by one tick.
func (e *Engine) step() {
	e.mu.Lock()
	e.tick++
	t := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(t)
	}
	if e.FlushEvery > 0 && t%e.FlushEvery == 0 && e.OnFlush != nil {
		e.OnFlush(t)
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
