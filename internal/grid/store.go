package grid

import (
	"fmt"
	"sort"
)

// Store is a sparse mapping from coordinate to tile properties for one scene.
// Coordinates without an entry read as NewTile.
type Store struct {
	tiles map[Coord]*Tile
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tiles: make(map[Coord]*Tile)}
}

// Get returns the tile at c and whether an entry exists. It never creates one.
func (s *Store) Get(c Coord) (Tile, bool) {
	t, ok := s.tiles[c]
	if !ok {
		return NewTile(c), false
	}
	return *t, true
}

// Lookup returns the tile at c, or the all-default tile when absent.
func (s *Store) Lookup(c Coord) Tile {
	t, _ := s.Get(c)
	return t
}

// Has reports whether an entry exists at c.
func (s *Store) Has(c Coord) bool {
	_, ok := s.tiles[c]
	return ok
}

// Set inserts or overwrites the entry at c. The stored tile always carries
// c as its position, whatever the payload says.
func (s *Store) Set(c Coord, t Tile) {
	t.X, t.Y = c.X, c.Y
	s.tiles[c] = &t
}

// Update fetches or creates the entry at c and applies fn to it in place.
func (s *Store) Update(c Coord, fn func(t *Tile)) Tile {
	t, ok := s.tiles[c]
	if !ok {
		nt := NewTile(c)
		t = &nt
		s.tiles[c] = t
	}
	fn(t)
	t.X, t.Y = c.X, c.Y
	return *t
}

// UpdateAll applies fn to every entry in place.
func (s *Store) UpdateAll(fn func(t *Tile)) {
	for c, t := range s.tiles {
		fn(t)
		t.X, t.Y = c.X, c.Y
	}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.tiles)
}

// Coords returns every stored coordinate ordered by x, then y.
func (s *Store) Coords() []Coord {
	coords := make([]Coord, 0, len(s.tiles))
	for c := range s.tiles {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Y < coords[j].Y
	})
	return coords
}

// Tiles returns copies of every entry in Coords order.
func (s *Store) Tiles() []Tile {
	coords := s.Coords()
	out := make([]Tile, len(coords))
	for i, c := range coords {
		out[i] = *s.tiles[c]
	}
	return out
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	cp := &Store{tiles: make(map[Coord]*Tile, len(s.tiles))}
	for c, t := range s.tiles {
		nt := *t
		cp.tiles[c] = &nt
	}
	return cp
}

// String returns a summary of the store.
func (s *Store) String() string {
	dug, watered := 0, 0
	for _, t := range s.tiles {
		if t.IsDug() {
			dug++
		}
		if t.IsWatered() {
			watered++
		}
	}
	return fmt.Sprintf("Store(tiles=%d, dug=%d, watered=%d)", len(s.tiles), dug, watered)
}
