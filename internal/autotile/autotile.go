// Package autotile picks decoration variants for dug and watered ground from
// the state of each tile's four orthogonal neighbors, and keeps a painted
// neighborhood consistent after a state change.
package autotile

import (
	"fmt"

	"github.com/talgya/homestead/internal/grid"
)

// Layer selects which cultivation state is being drawn. Each layer has its
// own decoration surface.
type Layer uint8

const (
	LayerDug     Layer = iota // Ground decoration 1
	LayerWatered              // Ground decoration 2
)

// Layers lists both decoration layers in paint order.
var Layers = [2]Layer{LayerDug, LayerWatered}

func (l Layer) String() string {
	switch l {
	case LayerDug:
		return "dug"
	case LayerWatered:
		return "watered"
	default:
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
}

// Active reports whether t is in this layer's state.
func (l Layer) Active(t grid.Tile) bool {
	switch l {
	case LayerDug:
		return t.IsDug()
	case LayerWatered:
		return t.IsWatered()
	default:
		panic(fmt.Sprintf("autotile: unknown layer %d", uint8(l)))
	}
}

// ActiveAt reports whether an entry exists at c and is in this layer's state.
func (l Layer) ActiveAt(s *grid.Store, c grid.Coord) bool {
	t, ok := s.Get(c)
	return ok && l.Active(t)
}

// Variant indexes the 16 decoration tiles of a layer. Art assets are keyed
// by this index.
type Variant uint8

// VariantCount is the number of decoration tiles per layer.
const VariantCount = 16

// Neighbor bits of a mask.
const (
	BitLeft  uint8 = 1 << iota // x-1
	BitRight                   // x+1
	BitDown                    // y-1
	BitUp                      // y+1
)

// variantTable maps a neighbor mask (up<<3 | down<<2 | right<<1 | left) to
// the art index. Every mask has exactly one variant and no two masks share one.
var variantTable = [VariantCount]Variant{
	0b0000: 0,  // isolated
	0b0001: 15, // left
	0b0010: 13, // right
	0b0011: 14, // right, left
	0b0100: 4,  // down
	0b0101: 3,  // down, left
	0b0110: 1,  // down, right
	0b0111: 2,  // down, right, left
	0b1000: 12, // up
	0b1001: 11, // up, left
	0b1010: 9,  // up, right
	0b1011: 10, // up, right, left
	0b1100: 8,  // up, down
	0b1101: 7,  // up, down, left
	0b1110: 5,  // up, down, right
	0b1111: 6,  // all four
}

// Mask packs the four neighbor booleans into a 4-bit pattern.
func Mask(up, down, right, left bool) uint8 {
	var m uint8
	if up {
		m |= BitUp
	}
	if down {
		m |= BitDown
	}
	if right {
		m |= BitRight
	}
	if left {
		m |= BitLeft
	}
	return m
}

// VariantFor returns the art index for a neighbor mask. A mask outside the
// 16 enumerated patterns is a logic error and panics.
func VariantFor(mask uint8) Variant {
	if int(mask) >= len(variantTable) {
		panic(fmt.Sprintf("autotile: neighbor mask %#b out of range", mask))
	}
	return variantTable[mask]
}

// NeighborMask evaluates layer at the four neighbors of c.
func NeighborMask(s *grid.Store, c grid.Coord, layer Layer) uint8 {
	return Mask(
		layer.ActiveAt(s, c.Step(grid.Up)),
		layer.ActiveAt(s, c.Step(grid.Down)),
		layer.ActiveAt(s, c.Step(grid.Right)),
		layer.ActiveAt(s, c.Step(grid.Left)),
	)
}

// Resolve returns the variant to draw at c on layer. It reads only the store.
func Resolve(s *grid.Store, c grid.Coord, layer Layer) Variant {
	return VariantFor(NeighborMask(s, c, layer))
}
