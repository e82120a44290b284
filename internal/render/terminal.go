package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/talgya/homestead/internal/autotile"
	"github.com/talgya/homestead/internal/grid"
)

// variantGlyphs draws each art index as the box-drawing piece that connects
// toward the same neighbors.
var variantGlyphs = [autotile.VariantCount]string{
	0:  "■", // isolated
	1:  "┌", // down, right
	2:  "┬", // down, right, left
	3:  "┐", // down, left
	4:  "╷", // down
	5:  "├", // up, down, right
	6:  "┼", // all four
	7:  "┤", // up, down, left
	8:  "│", // up, down
	9:  "└", // up, right
	10: "┴", // up, right, left
	11: "┘", // up, left
	12: "╵", // up
	13: "╶", // right
	14: "─", // right, left
	15: "╴", // left
}

// Glyph returns the terminal glyph for a variant.
func Glyph(v autotile.Variant) string {
	return variantGlyphs[v]
}

var (
	dugStyle     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(222, 184, 135)).Background(tcell.NewRGBColor(101, 67, 33))
	wateredStyle = tcell.StyleDefault.Foreground(tcell.ColorLightCyan).Background(tcell.NewRGBColor(40, 30, 20))
)

// Terminal paints decoration onto a tcell screen. Watered ground is drawn
// over dug ground in the same cell.
type Terminal struct {
	screen tcell.Screen
	layers *Layers
	origin grid.Coord // grid cell shown at the top-left corner
}

// NewTerminal creates a terminal surface. origin is the grid cell drawn at
// screen position (0, 0); y grows upward on the grid and downward on screen.
func NewTerminal(screen tcell.Screen, origin grid.Coord) *Terminal {
	return &Terminal{
		screen: screen,
		layers: NewLayers(),
		origin: origin,
	}
}

// Layers exposes the painted state behind the screen.
func (t *Terminal) Layers() *Layers {
	return t.layers
}

// Screen returns the underlying screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// ClearAll wipes both layers and the screen.
func (t *Terminal) ClearAll() {
	t.layers.ClearAll()
	t.screen.Clear()
}

// PaintVariant records the variant and redraws the cell.
func (t *Terminal) PaintVariant(c grid.Coord, layer autotile.Layer, v autotile.Variant) {
	t.layers.PaintVariant(c, layer, v)
	t.drawCell(c)
}

// Show flushes pending changes to the terminal.
func (t *Terminal) Show() {
	t.screen.Show()
}

// GridToScreen converts a grid coordinate to a screen cell.
// visible is false when the cell falls outside the screen.
func (t *Terminal) GridToScreen(c grid.Coord) (sx, sy int, visible bool) {
	sx = c.X - t.origin.X
	sy = t.origin.Y - c.Y
	w, h := t.screen.Size()
	return sx, sy, sx >= 0 && sy >= 0 && sx < w && sy < h
}

func (t *Terminal) drawCell(c grid.Coord) {
	sx, sy, visible := t.GridToScreen(c)
	if !visible {
		return
	}
	if v, ok := t.layers.Variant(autotile.LayerWatered, c); ok {
		t.putGlyph(sx, sy, Glyph(v), wateredStyle)
		return
	}
	if v, ok := t.layers.Variant(autotile.LayerDug, c); ok {
		t.putGlyph(sx, sy, Glyph(v), dugStyle)
	}
}

// putGlyph draws a single glyph at screen position (x, y).
func (t *Terminal) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	t.screen.SetContent(x, y, runes[0], combc, style)
	if runewidth.StringWidth(glyph) == 2 {
		// Fill the second column to avoid rendering artifacts.
		t.screen.SetContent(x+1, y, ' ', nil, style)
	}
}
