// Package grid provides the per-scene tile property store.
// Tiles live on an integer grid addressed by (x, y) with y growing upward.
package grid

import "fmt"

// Coord is a grid cell position. It is used directly as a map key, so two
// coordinates are the same cell exactly when both components are equal.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Direction indexes the four orthogonal neighbors.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// NeighborDirections defines the four orthogonal offsets, indexed by Direction.
var NeighborDirections = [4]Coord{
	Up:    {X: 0, Y: 1},
	Down:  {X: 0, Y: -1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

// Step returns the adjacent coordinate in direction d.
func (c Coord) Step(d Direction) Coord {
	off := NeighborDirections[d]
	return Coord{X: c.X + off.X, Y: c.Y + off.Y}
}

// Neighbors returns the four orthogonal neighbors in up, down, left, right order.
func (c Coord) Neighbors() [4]Coord {
	var result [4]Coord
	for i, dir := range NeighborDirections {
		result[i] = Coord{X: c.X + dir.X, Y: c.Y + dir.Y}
	}
	return result
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
