package grid

// Unset is the counter sentinel for "never happened".
const Unset = -1

// Tile holds the properties of a single grid cell.
type Tile struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`

	// Land capabilities, populated from scene configuration.
	Diggable          bool `json:"diggable" yaml:"diggable"`
	CanDropItem       bool `json:"can_drop_item" yaml:"canDropItem"`
	CanPlaceFurniture bool `json:"can_place_furniture" yaml:"canPlaceFurniture"`
	IsPath            bool `json:"is_path" yaml:"isPath"`
	IsNPCObstacle     bool `json:"is_npc_obstacle" yaml:"isNPCObstacle"`

	// Cultivation state, populated during play. Unset (-1) means inactive.
	DaysSinceDug         int `json:"days_since_dug" yaml:"daysSinceDug"`
	DaysSinceWatered     int `json:"days_since_watered" yaml:"daysSinceWatered"`
	SeedItemCode         int `json:"seed_item_code" yaml:"seedItemCode"`
	GrowthDays           int `json:"growth_days" yaml:"growthDays"`
	DaysSinceLastHarvest int `json:"days_since_last_harvest" yaml:"daysSinceLastHarvest"`
}

// NewTile returns a tile at c with every flag false and every counter Unset.
// A coordinate missing from a Store reads as exactly this value.
func NewTile(c Coord) Tile {
	return Tile{
		X:                    c.X,
		Y:                    c.Y,
		DaysSinceDug:         Unset,
		DaysSinceWatered:     Unset,
		SeedItemCode:         Unset,
		GrowthDays:           Unset,
		DaysSinceLastHarvest: Unset,
	}
}

// Coord returns the tile position.
func (t Tile) Coord() Coord {
	return Coord{X: t.X, Y: t.Y}
}

// IsDug reports whether the tile has been dug.
func (t Tile) IsDug() bool {
	return t.DaysSinceDug > Unset
}

// IsWatered reports whether the tile is currently watered.
func (t Tile) IsWatered() bool {
	return t.DaysSinceWatered > Unset
}
