// Package engine provides the in-game clock and the daily advance of tile state.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TickSchedule defines the calendar relative to the tick counter.
const (
	TicksPerSimHour = 60   // 60 ticks = 1 sim-hour
	TicksPerSimDay  = 1440 // 24 hours × 60
	DaysPerWeek     = 7
	DaysPerSeason   = 28
	SeasonsPerYear  = 4
)

// Engine drives the in-game clock forward.
type Engine struct {
	Interval time.Duration // Base tick interval (default 1 second)

	// Callbacks for each tick layer, populated during setup.
	OnTick   func(tick uint64) // Every tick (sim-minute)
	OnHour   func(tick uint64) // Every 60 ticks
	OnDay    func(day DayEvent)
	OnSeason func(day DayEvent)

	mu      sync.Mutex
	tick    uint64  // monotonic, never resets
	speed   float64 // 1.0 = real-time, 0 = paused
	running bool
}

// NewEngine creates a clock with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval: time.Second,
		speed:    1.0,
	}
}

// CurrentTick returns the most recent tick.
func (e *Engine) CurrentTick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// SetTick positions the clock, typically when resuming a saved game.
func (e *Engine) SetTick(tick uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick = tick
}

// Speed returns the speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. 0 pauses the clock.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run advances the clock until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("clock started", "tick", e.CurrentTick(), "speed", e.Speed())

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		slog.Info("clock stopped", "tick", e.CurrentTick())
	}()

	for e.Running() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused: sleep briefly and check again.
			if !sleepCtx(ctx, 100*time.Millisecond) {
				return ctx.Err()
			}
			continue
		}

		start := time.Now()
		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			if !sleepCtx(ctx, target-elapsed) {
				return ctx.Err()
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// Stop halts the clock loop after the current tick.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Step advances the clock by one tick and fires due callbacks.
func (e *Engine) Step() {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	e.fire(tick)
}

// SkipToNextDay jumps the clock to the next day boundary, firing that
// boundary's callbacks once. Minute callbacks in between are skipped.
func (e *Engine) SkipToNextDay() DayEvent {
	e.mu.Lock()
	e.tick = (e.tick/TicksPerSimDay + 1) * TicksPerSimDay
	tick := e.tick
	e.mu.Unlock()

	e.fire(tick)
	return DayOf(tick)
}

func (e *Engine) fire(tick uint64) {
	if e.OnTick != nil {
		e.OnTick(tick)
	}

	if tick%TicksPerSimHour == 0 && e.OnHour != nil {
		e.OnHour(tick)
	}

	if tick%TicksPerSimDay != 0 {
		return
	}
	day := DayOf(tick)
	if e.OnDay != nil {
		e.OnDay(day)
	}
	if day.Day == 1 && e.OnSeason != nil {
		e.OnSeason(day)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
