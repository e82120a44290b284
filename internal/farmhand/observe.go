// Package farmhand implements an autonomous field worker.
// It observes tiles via the API, plans which ones to work with the same
// tool rules the game uses, and acts via the tool endpoints.
package farmhand

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/homestead/internal/grid"
)

// FarmSnapshot holds all data collected during an observation cycle.
type FarmSnapshot struct {
	Status Status
	Tiles  []TileView // every coordinate within reach, row-major from the bottom-left
}

// Status mirrors the fields of GET /api/v1/status the farmhand uses.
type Status struct {
	Name        string  `json:"name"`
	ActiveScene string  `json:"active_scene"`
	Tick        uint64  `json:"tick"`
	SimTime     string  `json:"sim_time"`
	Speed       float64 `json:"speed"`
	Running     bool    `json:"running"`
}

// TileView mirrors GET /api/v1/tile/{x}/{y}.
type TileView struct {
	Scene   string    `json:"scene"`
	Present bool      `json:"present"`
	Tile    grid.Tile `json:"tile"`
}

// Observer fetches farm state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches the status and every tile within reach of pos.
func (o *Observer) Observe(pos grid.Coord, reach int) (*FarmSnapshot, error) {
	snap := &FarmSnapshot{}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}

	for y := pos.Y - reach; y <= pos.Y+reach; y++ {
		for x := pos.X - reach; x <= pos.X+reach; x++ {
			var tv TileView
			if err := o.fetchJSON(fmt.Sprintf("/api/v1/tile/%d/%d", x, y), &tv); err != nil {
				return nil, fmt.Errorf("fetch tile: %w", err)
			}
			snap.Tiles = append(snap.Tiles, tv)
		}
	}

	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
