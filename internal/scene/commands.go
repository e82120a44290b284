package scene

import (
	"github.com/talgya/homestead/internal/autotile"
	"github.com/talgya/homestead/internal/grid"
)

// Property returns the active scene's tile at c and whether an entry exists.
// Absent tiles read as grid.NewTile(c).
func (c *Coordinator) Property(at grid.Coord) (grid.Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.Get(at)
}

// SetProperty overwrites the active scene's tile at c. It does not repaint.
func (c *Coordinator) SetProperty(at grid.Coord, t grid.Tile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active.Set(at, t)
}

// MarkDug digs the tile at c and repaints its dug neighborhood.
func (c *Coordinator) MarkDug(at grid.Coord) grid.Tile {
	return c.mark(at, autotile.LayerDug)
}

// MarkWatered waters the tile at c and repaints its watered neighborhood.
func (c *Coordinator) MarkWatered(at grid.Coord) grid.Tile {
	return c.mark(at, autotile.LayerWatered)
}

func (c *Coordinator) mark(at grid.Coord, layer autotile.Layer) grid.Tile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markLocked(at, layer)
}

func (c *Coordinator) markLocked(at grid.Coord, layer autotile.Layer) grid.Tile {
	t := c.active.Update(at, func(t *grid.Tile) {
		switch layer {
		case autotile.LayerDug:
			t.DaysSinceDug = 0
		case autotile.LayerWatered:
			t.DaysSinceWatered = 0
		}
	})
	autotile.Apply(c.active, c.surface, at, layer)
	return t
}

// CanUse reports whether tool may be used on the active scene's tile at c.
func (c *Coordinator) CanUse(tool Tool, at grid.Coord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.active.Get(at)
	return CanUse(tool, t, ok)
}

// Use checks tool against the active scene's tile at c and, when allowed,
// applies its mark in the same critical section. Only the hoe and the
// watering can leave a mark; other tools report false and change nothing.
// The returned tile is the tile after the mark, or the unchanged tile.
func (c *Coordinator) Use(tool Tool, at grid.Coord) (grid.Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.active.Get(at)
	if !CanUse(tool, t, ok) {
		return t, false
	}
	switch tool {
	case ToolHoe:
		return c.markLocked(at, autotile.LayerDug), true
	case ToolWateringCan:
		return c.markLocked(at, autotile.LayerWatered), true
	}
	return t, false
}

// ActiveScene returns the active scene name, empty before any activation.
func (c *Coordinator) ActiveScene() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeName
}

// Scenes returns every tracked scene name, configured scenes first.
func (c *Coordinator) Scenes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Snapshot returns a copy of name's snapshot.
func (c *Coordinator) Snapshot(name string) (*grid.Store, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.snapshots[name]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Stats summarizes one scene's snapshot.
type Stats struct {
	Scene   string `json:"scene"`
	Tiles   int    `json:"tiles"`
	Dug     int    `json:"dug"`
	Watered int    `json:"watered"`
	Active  bool   `json:"active"`
}

// AllStats returns per-scene counts in Scenes order.
func (c *Coordinator) AllStats() []Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Stats, 0, len(c.order))
	for _, name := range c.order {
		s := c.snapshots[name]
		st := Stats{Scene: name, Tiles: s.Len(), Active: name == c.activeName}
		for _, t := range s.Tiles() {
			if t.IsDug() {
				st.Dug++
			}
			if t.IsWatered() {
				st.Watered++
			}
		}
		out = append(out, st)
	}
	return out
}
