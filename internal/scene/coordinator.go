// Package scene owns the per-scene property snapshots, binds one of them as
// the active store, and exposes the tile commands gameplay code calls.
package scene

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/homestead/internal/autotile"
	"github.com/talgya/homestead/internal/engine"
	"github.com/talgya/homestead/internal/grid"
)

// Definition is the static property data for one scene.
type Definition struct {
	Name    string
	Entries []grid.ConfigEntry
}

// Persister durably stores scene snapshots.
type Persister interface {
	SaveScene(name string, s *grid.Store) error
	// LoadScene returns found=false when nothing was saved for name.
	LoadScene(name string) (s *grid.Store, found bool, err error)
}

// Coordinator holds the scene name → snapshot table and the active store.
// Every exported method runs under one lock, so a tile change and its
// neighborhood repaint are never interleaved with a redraw.
type Coordinator struct {
	mu sync.Mutex

	snapshots  map[string]*grid.Store
	order      []string // configured scenes first, lazily created ones after
	active     *grid.Store
	activeName string

	surface   autotile.Surface
	persister Persister
}

// NewCoordinator creates a coordinator painting onto surf. Until a scene is
// activated, commands act on an unnamed scratch store.
func NewCoordinator(surf autotile.Surface) *Coordinator {
	return &Coordinator{
		snapshots: make(map[string]*grid.Store),
		active:    grid.NewStore(),
		surface:   surf,
	}
}

// SetPersister attaches the durable save target used by Deactivate and SaveAll.
func (c *Coordinator) SetPersister(p Persister) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persister = p
}

// Initialize builds one snapshot per definition. The starting scene, if
// named, becomes the active store without a redraw.
func (c *Coordinator) Initialize(defs []Definition, starting string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, def := range defs {
		s := grid.FromConfig(def.Entries)
		c.putLocked(def.Name, s)
		slog.Debug("scene initialized", "scene", def.Name, "tiles", s.Len())

		if def.Name == starting {
			c.active = s
			c.activeName = def.Name
		}
	}
	slog.Info("grid properties initialized", "scenes", len(defs), "active", c.activeName)
}

// Activate binds name's snapshot as the active store, creating an empty one
// for unknown scenes, and redraws it when it has entries.
func (c *Coordinator) Activate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activateLocked(name)
}

func (c *Coordinator) activateLocked(name string) {
	s, ok := c.snapshots[name]
	if !ok {
		s = grid.NewStore()
		c.putLocked(name, s)
	}
	c.active = s
	c.activeName = name

	painted := 0
	if s.Len() > 0 {
		c.surface.ClearAll()
		painted = autotile.RedrawAll(s, c.surface)
	}
	slog.Info("scene activated", "scene", name, "tiles", s.Len(), "painted", painted)
}

// Deactivate stores the active store as name's snapshot, replacing any
// previous one, and hands it to the persister when one is attached. When
// another named scene is active, name receives a copy so later edits to the
// active scene do not leak into it.
func (c *Coordinator) Deactivate(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deactivateLocked(name)
}

func (c *Coordinator) deactivateLocked(name string) error {
	stored := c.active
	if c.activeName != "" && name != c.activeName {
		stored = c.active.Clone()
	}
	c.putLocked(name, stored)
	slog.Debug("scene stored", "scene", name, "tiles", stored.Len())

	if c.persister == nil {
		return nil
	}
	if err := c.persister.SaveScene(name, stored); err != nil {
		return fmt.Errorf("save scene %s: %w", name, err)
	}
	return nil
}

// SwitchTo deactivates the current scene, if any, unloads its decoration and
// activates name. The switch completes even when persisting the old scene
// fails.
func (c *Coordinator) SwitchTo(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.activeName != "" {
		err = c.deactivateLocked(c.activeName)
	}
	c.surface.ClearAll()
	c.activateLocked(name)
	return err
}

// Restore replaces name's snapshot with s. Restored data wins over the
// configured defaults wholesale. If name is active, s is bound and redrawn.
func (c *Coordinator) Restore(name string, s *grid.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restoreLocked(name, s)
}

func (c *Coordinator) restoreLocked(name string, s *grid.Store) {
	c.putLocked(name, s)
	if name == c.activeName {
		c.active = s
		c.surface.ClearAll()
		autotile.RedrawAll(s, c.surface)
	}
}

// RestoreFrom loads every known scene from p and restores each one found.
// It returns how many scenes were restored.
func (c *Coordinator) RestoreFrom(p Persister) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	restored := 0
	for _, name := range c.order {
		s, found, err := p.LoadScene(name)
		if err != nil {
			return restored, fmt.Errorf("load scene %s: %w", name, err)
		}
		if !found {
			continue
		}
		c.restoreLocked(name, s)
		restored++
	}
	return restored, nil
}

// SaveAll persists every snapshot to p.
func (c *Coordinator) SaveAll(p Persister) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range c.order {
		if err := p.SaveScene(name, c.snapshots[name]); err != nil {
			return fmt.Errorf("save scene %s: %w", name, err)
		}
	}
	return nil
}

// AdvanceDay dries every scene's watering, then clears and redraws the active
// scene. Inactive scenes change in memory only. It returns tiles dried.
func (c *Coordinator) AdvanceDay() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	stores := make([]*grid.Store, 0, len(c.snapshots)+1)
	for _, name := range c.order {
		stores = append(stores, c.snapshots[name])
	}
	if c.activeName == "" {
		stores = append(stores, c.active)
	}

	dried := engine.AdvanceDay(stores...)

	c.surface.ClearAll()
	painted := autotile.RedrawAll(c.active, c.surface)
	slog.Info("day advanced", "scenes", len(c.snapshots), "dried", dried, "painted", painted)
	return dried
}

func (c *Coordinator) putLocked(name string, s *grid.Store) {
	if _, ok := c.snapshots[name]; !ok {
		c.order = append(c.order, name)
	}
	c.snapshots[name] = s
}
