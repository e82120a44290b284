package grid

import (
	"reflect"
	"testing"
)

func TestStore_AbsentEqualsDefault(t *testing.T) {
	s := NewStore()

	for _, c := range []Coord{{0, 0}, {-3, 7}, {12, 3}, {1, 23}} {
		got, ok := s.Get(c)
		if ok {
			t.Errorf("Get(%v) reported an entry in an empty store", c)
		}
		if want := NewTile(c); got != want {
			t.Errorf("Get(%v) = %+v, want %+v", c, got, want)
		}
		if s.Len() != 0 {
			t.Fatalf("Get created an entry: Len = %d", s.Len())
		}
	}

	// An explicit all-default entry reads the same as absence.
	c := Coord{X: 4, Y: 4}
	s.Set(c, NewTile(c))
	explicit, ok := s.Get(c)
	if !ok {
		t.Fatal("explicit entry not found")
	}
	if explicit != s.Lookup(Coord{X: 4, Y: 4}) || explicit != NewTile(c) {
		t.Errorf("explicit default entry %+v differs from NewTile", explicit)
	}
}

func TestStore_KeysDoNotCollide(t *testing.T) {
	s := NewStore()
	s.Set(Coord{X: 1, Y: 23}, Tile{Diggable: true})
	s.Set(Coord{X: 12, Y: 3}, Tile{IsPath: true})

	a := s.Lookup(Coord{X: 1, Y: 23})
	b := s.Lookup(Coord{X: 12, Y: 3})
	if !a.Diggable || a.IsPath {
		t.Errorf("(1,23) = %+v", a)
	}
	if !b.IsPath || b.Diggable {
		t.Errorf("(12,3) = %+v", b)
	}
}

func TestStore_SetNormalizesCoordinates(t *testing.T) {
	s := NewStore()
	tile := NewTile(Coord{X: 99, Y: 99})
	tile.CanDropItem = true

	s.Set(Coord{X: 2, Y: -5}, tile)

	got, ok := s.Get(Coord{X: 2, Y: -5})
	if !ok {
		t.Fatal("entry missing after Set")
	}
	if got.X != 2 || got.Y != -5 {
		t.Errorf("stored position = (%d,%d), want (2,-5)", got.X, got.Y)
	}
	if s.Has(Coord{X: 99, Y: 99}) {
		t.Error("payload coordinates must not create an entry")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	c := Coord{X: 1, Y: 1}
	s.Set(c, NewTile(c))

	got, _ := s.Get(c)
	got.DaysSinceDug = 3

	if s.Lookup(c).DaysSinceDug != Unset {
		t.Error("mutating a returned tile changed the store")
	}
}

func TestStore_CloneIsDeep(t *testing.T) {
	s := NewStore()
	s.Update(Coord{X: 0, Y: 0}, func(t *Tile) { t.DaysSinceWatered = 0 })

	cp := s.Clone()
	cp.Update(Coord{X: 0, Y: 0}, func(t *Tile) { t.DaysSinceWatered = Unset })

	if !s.Lookup(Coord{X: 0, Y: 0}).IsWatered() {
		t.Error("clone shares tiles with the original")
	}
	if !reflect.DeepEqual(s.Coords(), cp.Coords()) {
		t.Errorf("clone coords %v, want %v", cp.Coords(), s.Coords())
	}
}

func TestStore_CoordsSorted(t *testing.T) {
	s := NewStore()
	for _, c := range []Coord{{3, 1}, {-1, 5}, {3, -2}, {0, 0}} {
		s.Set(c, NewTile(c))
	}
	want := []Coord{{-1, 5}, {0, 0}, {3, -2}, {3, 1}}
	if got := s.Coords(); !reflect.DeepEqual(got, want) {
		t.Errorf("Coords() = %v, want %v", got, want)
	}
}

func TestFromConfig_Accumulates(t *testing.T) {
	s := FromConfig([]ConfigEntry{
		{Coord: Coord{X: 0, Y: 0}, Flag: "diggable", Value: true},
		{Coord: Coord{X: 0, Y: 0}, Flag: "isPath", Value: true},
		{Coord: Coord{X: 1, Y: 0}, Flag: "canDropItem", Value: true},
	})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	farm := s.Lookup(Coord{X: 0, Y: 0})
	if !farm.Diggable || !farm.IsPath {
		t.Errorf("(0,0) = %+v, want diggable and path", farm)
	}
	if farm.CanDropItem || farm.CanPlaceFurniture || farm.IsNPCObstacle {
		t.Errorf("(0,0) has unexpected flags: %+v", farm)
	}
	if farm.DaysSinceDug != Unset || farm.SeedItemCode != Unset {
		t.Errorf("(0,0) counters not defaulted: %+v", farm)
	}
}

func TestFromConfig_LaterValueWins(t *testing.T) {
	s := FromConfig([]ConfigEntry{
		{Coord: Coord{X: 2, Y: 2}, Flag: "isNPCObstacle", Value: true},
		{Coord: Coord{X: 2, Y: 2}, Flag: "isNPCObstacle", Value: false},
	})
	if s.Lookup(Coord{X: 2, Y: 2}).IsNPCObstacle {
		t.Error("second triple should clear the flag")
	}
}

func TestFromConfig_UnknownFlagIgnored(t *testing.T) {
	s := FromConfig([]ConfigEntry{
		{Coord: Coord{X: 5, Y: 5}, Flag: "isLava", Value: true},
		{Coord: Coord{X: 5, Y: 5}, Flag: "canPlaceFurniture", Value: true},
	})
	got := s.Lookup(Coord{X: 5, Y: 5})
	want := NewTile(Coord{X: 5, Y: 5})
	want.CanPlaceFurniture = true
	if got != want {
		t.Errorf("(5,5) = %+v, want %+v", got, want)
	}
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		name string
		want Flag
		ok   bool
	}{
		{"diggable", FlagDiggable, true},
		{"isDiggable", FlagDiggable, true},
		{"canDropItem", FlagCanDropItem, true},
		{"can_place_furniture", FlagCanPlaceFurniture, true},
		{"isPath", FlagIsPath, true},
		{"isNPCObstacle", FlagIsNPCObstacle, true},
		{"Diggable", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFlag(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseFlag(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCoord_Neighbors(t *testing.T) {
	c := Coord{X: 5, Y: 5}
	want := [4]Coord{{5, 6}, {5, 4}, {4, 5}, {6, 5}}
	if got := c.Neighbors(); got != want {
		t.Errorf("Neighbors() = %v, want %v", got, want)
	}
	if c.Step(Up) != want[Up] || c.Step(Right) != want[Right] {
		t.Error("Step disagrees with Neighbors")
	}
}
