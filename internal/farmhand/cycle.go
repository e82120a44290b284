package farmhand

import (
	"log/slog"

	"github.com/talgya/homestead/internal/grid"
)

// Worker ties one observe, plan, act cycle together.
type Worker struct {
	Observer *Observer
	Actor    *Actor
	Memory   *CycleMemory

	Pos    grid.Coord
	Reach  int
	Budget int // max tasks per cycle
}

// RunCycle executes one observe → plan → act cycle.
func (w *Worker) RunCycle() (CycleRecord, error) {
	snap, err := w.Observer.Observe(w.Pos, w.Reach)
	if err != nil {
		return CycleRecord{}, err
	}

	tasks := Plan(snap, w.Pos, w.Reach, w.Budget)
	rec := CycleRecord{
		Tick:    snap.Status.Tick,
		Scene:   snap.Status.ActiveScene,
		Planned: len(tasks),
	}

	for _, task := range tasks {
		outcome, err := w.Actor.Act(task)
		if err != nil {
			slog.Warn("task failed", "tool", task.Tool, "at", task.At, "error", err)
		}
		switch outcome {
		case Done:
			rec.Done++
		case Skipped:
			rec.Skipped++
		case Limited:
			rec.Limited = true
		}
		if outcome == Limited {
			break
		}
	}

	if w.Memory != nil {
		w.Memory.Record(rec)
		w.Memory.Save()
	}
	return rec, nil
}
