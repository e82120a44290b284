package scene

import (
	"errors"
	"sync"
	"testing"

	"github.com/talgya/homestead/internal/autotile"
	"github.com/talgya/homestead/internal/grid"
)

func TestCanUse(t *testing.T) {
	diggable := grid.NewTile(grid.Coord{})
	diggable.Diggable = true

	dug := diggable
	dug.DaysSinceDug = 0

	wet := dug
	wet.DaysSinceWatered = 0

	droppable := grid.NewTile(grid.Coord{})
	droppable.CanDropItem = true

	tests := []struct {
		name    string
		tool    Tool
		tile    grid.Tile
		present bool
		want    bool
	}{
		{"hoe on diggable", ToolHoe, diggable, true, true},
		{"hoe on dug", ToolHoe, dug, true, false},
		{"hoe on plain", ToolHoe, grid.NewTile(grid.Coord{}), true, false},
		{"hoe on absent", ToolHoe, diggable, false, false},
		{"water on dug", ToolWateringCan, dug, true, true},
		{"water on watered", ToolWateringCan, wet, true, false},
		{"water on undug", ToolWateringCan, diggable, true, false},
		{"seed on droppable", ToolSeed, droppable, true, true},
		{"seed on dug only", ToolSeed, dug, true, false},
		{"commodity on droppable", ToolCommodity, droppable, true, true},
		{"commodity on absent", ToolCommodity, droppable, false, false},
		{"unknown tool", Tool(99), droppable, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanUse(tt.tool, tt.tile, tt.present); got != tt.want {
				t.Errorf("CanUse = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoordinator_CanUse(t *testing.T) {
	c, _ := newTestCoordinator(t)
	farm := grid.Coord{X: 5, Y: 5}

	if !c.CanUse(ToolHoe, farm) {
		t.Error("hoe should be valid on undug diggable tile")
	}
	if c.CanUse(ToolWateringCan, farm) {
		t.Error("watering can should need dug ground")
	}
	c.MarkDug(farm)
	if c.CanUse(ToolHoe, farm) || !c.CanUse(ToolWateringCan, farm) {
		t.Error("validity did not follow digging")
	}
	if c.CanUse(ToolHoe, grid.Coord{X: 50, Y: 50}) {
		t.Error("tool valid on absent tile")
	}
}

func TestCoordinator_Use(t *testing.T) {
	c, layers := newTestCoordinator(t)
	farm := grid.Coord{X: 5, Y: 5}

	if _, ok := c.Use(ToolWateringCan, farm); ok {
		t.Error("watered undug ground")
	}
	tile, ok := c.Use(ToolHoe, farm)
	if !ok || !tile.IsDug() {
		t.Errorf("hoe = %+v, %v; want dug", tile, ok)
	}
	if _, painted := layers.Variant(autotile.LayerDug, farm); !painted {
		t.Error("dug tile not painted")
	}
	if _, ok := c.Use(ToolHoe, farm); ok {
		t.Error("dug the same tile twice")
	}
	if tile, ok := c.Use(ToolWateringCan, farm); !ok || !tile.IsWatered() {
		t.Errorf("watering can = %+v, %v; want watered", tile, ok)
	}

	absent := grid.Coord{X: 50, Y: 50}
	if _, ok := c.Use(ToolHoe, absent); ok {
		t.Error("dug an absent tile")
	}
	if _, ok := c.Property(absent); ok {
		t.Error("rejected use created an entry")
	}
	if _, ok := c.Use(ToolSeed, grid.Coord{X: 0, Y: 0}); ok {
		t.Error("seed has no mark and should report false")
	}
}

func TestCoordinator_UseDuringSceneSwitch(t *testing.T) {
	c, _ := newTestCoordinator(t)
	at := grid.Coord{X: 0, Y: 0}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c.Use(ToolHoe, at)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 250; i++ {
			c.SwitchTo("Field")
			c.SwitchTo("Farm")
		}
	}()
	wg.Wait()

	// Field has no diggable tile at (0,0), so no hoe use may ever land there.
	field, _ := c.Snapshot("Field")
	if field.Has(at) {
		t.Errorf("hoe marked Field at %v: %+v", at, field.Lookup(at))
	}
}

func TestParseTool(t *testing.T) {
	for _, tool := range []Tool{ToolHoe, ToolWateringCan, ToolSeed, ToolCommodity} {
		got, err := ParseTool(tool.String())
		if err != nil || got != tool {
			t.Errorf("ParseTool(%q) = %v, %v", tool.String(), got, err)
		}
	}
	if _, err := ParseTool("scythe"); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("ParseTool(scythe) error = %v, want ErrUnknownTool", err)
	}
}

func TestWithinReach(t *testing.T) {
	player := grid.Coord{X: 0, Y: 0}
	tests := []struct {
		target grid.Coord
		radius int
		want   bool
	}{
		{grid.Coord{X: 1, Y: 1}, 1, true},
		{grid.Coord{X: -1, Y: 0}, 1, true},
		{grid.Coord{X: 2, Y: 0}, 1, false},
		{grid.Coord{X: 0, Y: -2}, 1, false},
		{grid.Coord{X: 0, Y: 0}, 0, true},
	}
	for _, tt := range tests {
		if got := WithinReach(player, tt.target, tt.radius); got != tt.want {
			t.Errorf("WithinReach(%v, r=%d) = %v, want %v", tt.target, tt.radius, got, tt.want)
		}
	}
}
