package farmhand

import (
	"github.com/talgya/homestead/internal/grid"
	"github.com/talgya/homestead/internal/scene"
)

// Task is one tool use on one tile.
type Task struct {
	Tool scene.Tool
	At   grid.Coord
}

// Plan picks up to budget tasks from snap. Dry dug ground is watered
// before new ground is broken, and tiles out of reach are never chosen.
func Plan(snap *FarmSnapshot, pos grid.Coord, reach, budget int) []Task {
	var water, dig []Task
	for _, tv := range snap.Tiles {
		at := tv.Tile.Coord()
		if !scene.WithinReach(pos, at, reach) {
			continue
		}
		switch {
		case scene.CanUse(scene.ToolWateringCan, tv.Tile, tv.Present):
			water = append(water, Task{Tool: scene.ToolWateringCan, At: at})
		case scene.CanUse(scene.ToolHoe, tv.Tile, tv.Present):
			dig = append(dig, Task{Tool: scene.ToolHoe, At: at})
		}
	}

	tasks := append(water, dig...)
	if len(tasks) > budget {
		tasks = tasks[:budget]
	}
	return tasks
}
