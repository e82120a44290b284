package config

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/homestead/internal/grid"
)

// Generator paints one flag over a rectangular patch wherever layered simplex
// noise clears Threshold, like painting a property tilemap by hand.
type Generator struct {
	OriginX   int     `yaml:"origin_x"`
	OriginY   int     `yaml:"origin_y"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Seed      int64   `yaml:"seed"`      // 0 = random
	Threshold float64 `yaml:"threshold"` // 0.0–1.0, higher paints fewer cells
	Flag      string  `yaml:"flag"`
}

// Generate returns one (coord, flag, true) triple per painted cell in
// row-major order. Unpainted cells emit nothing.
func Generate(g Generator) []grid.ConfigEntry {
	seed := g.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	noise := opensimplex.NewNormalized(seed)

	var entries []grid.ConfigEntry
	for y := g.OriginY; y < g.OriginY+g.Height; y++ {
		for x := g.OriginX; x < g.OriginX+g.Width; x++ {
			v := octaveNoise(noise, float64(x), float64(y), 3, 0.12, 0.5)
			if v < g.Threshold {
				continue
			}
			entries = append(entries, grid.ConfigEntry{
				Coord: grid.Coord{X: x, Y: y},
				Flag:  g.Flag,
				Value: true,
			})
		}
	}
	return entries
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
