package scene

import (
	"errors"
	"fmt"

	"github.com/talgya/homestead/internal/grid"
)

// ErrUnknownTool is returned by ParseTool for names it does not recognize.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is the kind of item a player applies to a tile.
type Tool uint8

const (
	ToolHoe Tool = iota
	ToolWateringCan
	ToolSeed
	ToolCommodity
)

var toolNames = map[Tool]string{
	ToolHoe:         "hoe",
	ToolWateringCan: "watering_can",
	ToolSeed:        "seed",
	ToolCommodity:   "commodity",
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", uint8(t))
}

// ParseTool resolves a tool name such as "hoe".
func ParseTool(name string) (Tool, error) {
	for t, n := range toolNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// CanUse reports whether tool may target tile t. present says whether t has
// a store entry; tools never apply to tiles without one.
func CanUse(tool Tool, t grid.Tile, present bool) bool {
	if !present {
		return false
	}
	switch tool {
	case ToolHoe:
		return t.Diggable && !t.IsDug()
	case ToolWateringCan:
		return t.IsDug() && !t.IsWatered()
	case ToolSeed, ToolCommodity:
		return t.CanDropItem
	default:
		return false
	}
}

// WithinReach reports whether target is within radius cells of player on both axes.
func WithinReach(player, target grid.Coord, radius int) bool {
	return abs(target.X-player.X) <= radius && abs(target.Y-player.Y) <= radius
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
