package autotile

import "github.com/talgya/homestead/internal/grid"

// Surface is the render target for ground decoration.
type Surface interface {
	// ClearAll removes every painted variant from both layers.
	ClearAll()
	// PaintVariant draws variant v at c on layer, replacing what was there.
	PaintVariant(c grid.Coord, layer Layer, v Variant)
}

// Apply repaints c and every active neighbor of c after c became active on
// layer. Inactive neighbors are left alone; they repaint when they activate.
// It reports how many tiles were painted, 0 when c itself is not active.
func Apply(s *grid.Store, surf Surface, c grid.Coord, layer Layer) int {
	if !layer.ActiveAt(s, c) {
		return 0
	}

	surf.PaintVariant(c, layer, Resolve(s, c, layer))
	painted := 1

	for _, n := range c.Neighbors() {
		if layer.ActiveAt(s, n) {
			surf.PaintVariant(n, layer, Resolve(s, n, layer))
			painted++
		}
	}
	return painted
}

// RedrawAll paints every dug and watered entry of s. Callers clear the
// surface first. Variants depend only on the store, so entry order is irrelevant.
func RedrawAll(s *grid.Store, surf Surface) int {
	painted := 0
	for _, t := range s.Tiles() {
		c := t.Coord()
		for _, layer := range Layers {
			if layer.Active(t) {
				surf.PaintVariant(c, layer, Resolve(s, c, layer))
				painted++
			}
		}
	}
	return painted
}
