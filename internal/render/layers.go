// Package render provides ground decoration surfaces: an in-memory layer
// set and a terminal view built on it.
package render

import (
	"sort"
	"sync"

	"github.com/talgya/homestead/internal/autotile"
	"github.com/talgya/homestead/internal/grid"
)

// Layers records the painted variant of every cell on both decoration layers.
// Safe for concurrent readers while the coordinator paints.
type Layers struct {
	mu     sync.RWMutex
	cells  [len(autotile.Layers)]map[grid.Coord]autotile.Variant
	clears int
}

// NewLayers creates an empty layer set.
func NewLayers() *Layers {
	l := &Layers{}
	for i := range l.cells {
		l.cells[i] = make(map[grid.Coord]autotile.Variant)
	}
	return l
}

// ClearAll removes every painted cell.
func (l *Layers) ClearAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.cells {
		clear(l.cells[i])
	}
	l.clears++
}

// PaintVariant records v at c on layer.
func (l *Layers) PaintVariant(c grid.Coord, layer autotile.Layer, v autotile.Variant) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cells[layer][c] = v
}

// Variant returns the variant painted at c on layer.
func (l *Layers) Variant(layer autotile.Layer, c grid.Coord) (autotile.Variant, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.cells[layer][c]
	return v, ok
}

// Len returns the number of painted cells on layer.
func (l *Layers) Len(layer autotile.Layer) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cells[layer])
}

// Clears returns how many times the surface was cleared.
func (l *Layers) Clears() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clears
}

// Cell is one painted cell.
type Cell struct {
	X       int              `json:"x"`
	Y       int              `json:"y"`
	Variant autotile.Variant `json:"variant"`
}

// Cells returns the painted cells of layer ordered by x, then y.
func (l *Layers) Cells(layer autotile.Layer) []Cell {
	l.mu.RLock()
	out := make([]Cell, 0, len(l.cells[layer]))
	for c, v := range l.cells[layer] {
		out = append(out, Cell{X: c.X, Y: c.Y, Variant: v})
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}
