package engine

import "github.com/talgya/homestead/internal/grid"

// AdvanceDay applies the overnight decay rule to every store: watering dries
// out, everything else (dug state, crops) carries over unchanged. It returns
// how many tiles dried. Redrawing is the caller's job.
func AdvanceDay(stores ...*grid.Store) int {
	dried := 0
	for _, s := range stores {
		if s == nil {
			continue
		}
		s.UpdateAll(func(t *grid.Tile) {
			if t.IsWatered() {
				t.DaysSinceWatered = grid.Unset
				dried++
			}
		})
	}
	return dried
}
