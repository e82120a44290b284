package grid

import "log/slog"

// Flag names a boolean land capability set from scene configuration.
type Flag string

const (
	FlagDiggable          Flag = "diggable"
	FlagCanDropItem       Flag = "canDropItem"
	FlagCanPlaceFurniture Flag = "canPlaceFurniture"
	FlagIsPath            Flag = "isPath"
	FlagIsNPCObstacle     Flag = "isNPCObstacle"
)

// Flags lists every recognized flag.
var Flags = []Flag{
	FlagDiggable,
	FlagCanDropItem,
	FlagCanPlaceFurniture,
	FlagIsPath,
	FlagIsNPCObstacle,
}

// flagAliases maps field-style spellings onto the canonical names.
var flagAliases = map[string]Flag{
	"isDiggable":          FlagDiggable,
	"is_diggable":         FlagDiggable,
	"can_drop_item":       FlagCanDropItem,
	"can_place_furniture": FlagCanPlaceFurniture,
	"is_path":             FlagIsPath,
	"is_npc_obstacle":     FlagIsNPCObstacle,
}

// ParseFlag resolves a configured flag name. ok is false for names this
// version does not know.
func ParseFlag(name string) (Flag, bool) {
	for _, f := range Flags {
		if string(f) == name {
			return f, true
		}
	}
	f, ok := flagAliases[name]
	return f, ok
}

// Apply sets the named flag on t. It reports false, leaving t untouched,
// when the flag is not recognized.
func (f Flag) Apply(t *Tile, value bool) bool {
	switch f {
	case FlagDiggable:
		t.Diggable = value
	case FlagCanDropItem:
		t.CanDropItem = value
	case FlagCanPlaceFurniture:
		t.CanPlaceFurniture = value
	case FlagIsPath:
		t.IsPath = value
	case FlagIsNPCObstacle:
		t.IsNPCObstacle = value
	default:
		return false
	}
	return true
}

// ConfigEntry is one (coordinate, flag, value) triple of static scene data.
type ConfigEntry struct {
	Coord Coord  `yaml:",inline"`
	Flag  string `yaml:"flag"`
	Value bool   `yaml:"value"`
}

// FromConfig builds a fresh store by folding entries in order. Entries for
// the same coordinate accumulate onto one tile. An unknown flag name still
// fetches-or-creates the entry but sets nothing.
func FromConfig(entries []ConfigEntry) *Store {
	s := NewStore()
	skipped := 0
	for _, e := range entries {
		f, ok := ParseFlag(e.Flag)
		if !ok {
			skipped++
			slog.Debug("ignoring unknown grid flag", "flag", e.Flag, "coord", e.Coord)
		}
		s.Update(e.Coord, func(t *Tile) {
			if ok {
				f.Apply(t, e.Value)
			}
		})
	}
	if skipped > 0 {
		slog.Debug("grid flags skipped", "count", skipped)
	}
	return s
}
