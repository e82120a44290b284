package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/homestead/internal/autotile"
	"github.com/talgya/homestead/internal/engine"
	"github.com/talgya/homestead/internal/grid"
	"github.com/talgya/homestead/internal/persistence"
	"github.com/talgya/homestead/internal/render"
	"github.com/talgya/homestead/internal/scene"
)

const testKey = "test-admin-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	layers := render.NewLayers()
	coord := scene.NewCoordinator(layers)
	coord.Initialize([]scene.Definition{
		{Name: "Farm", Entries: []grid.ConfigEntry{
			{Coord: grid.Coord{X: 0, Y: 0}, Flag: "diggable", Value: true},
			{Coord: grid.Coord{X: 0, Y: 1}, Flag: "diggable", Value: true},
		}},
		{Name: "Field", Entries: []grid.ConfigEntry{
			{Coord: grid.Coord{X: 2, Y: 2}, Flag: "canDropItem", Value: true},
		}},
	}, "Farm")
	coord.Activate("Farm")

	eng := engine.NewEngine()
	eng.OnDay = func(engine.DayEvent) { coord.AdvanceDay() }

	return &Server{
		Scenes:   coord,
		Eng:      eng,
		Layers:   layers,
		AdminKey: testKey,
	}
}

func do(t *testing.T, h http.Handler, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if admin {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeTile(t *testing.T, rec *httptest.ResponseRecorder) tileResponse {
	t.Helper()
	var resp tileResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode tile response: %v", err)
	}
	return resp
}

func TestStatus(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), "GET", "/api/v1/status", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}

	var body struct {
		ActiveScene string        `json:"active_scene"`
		Scenes      []scene.Stats `json:"scenes"`
		SimTime     string        `json:"sim_time"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.ActiveScene != "Farm" || len(body.Scenes) != 2 || body.SimTime == "" {
		t.Errorf("status = %+v", body)
	}
}

func TestTile_AbsentReadsAsDefault(t *testing.T) {
	s := newTestServer(t)
	resp := decodeTile(t, do(t, s.Handler(), "GET", "/api/v1/tile/40/-3", "", false))

	if resp.Present {
		t.Error("absent tile reported present")
	}
	if resp.Tile != grid.NewTile(grid.Coord{X: 40, Y: -3}) {
		t.Errorf("tile = %+v, want default", resp.Tile)
	}
}

func TestTile_BadCoordinate(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), "GET", "/api/v1/tile/a/1", "", false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rec.Code)
	}
}

func TestDig_PaintsAndRejectsRepeat(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("dig code = %d: %s", rec.Code, rec.Body)
	}
	if resp := decodeTile(t, rec); resp.Tile.DaysSinceDug != 0 || !resp.Present {
		t.Errorf("dug tile = %+v", resp)
	}
	if v, ok := s.Layers.Variant(autotile.LayerDug, grid.Coord{X: 0, Y: 0}); !ok || v != 0 {
		t.Errorf("isolated dug variant = %d, %v; want 0", v, ok)
	}

	// Digging the tile above turns (0,0) into an up-connected piece.
	if rec := do(t, h, "POST", "/api/v1/tile/0/1/dig", "", false); rec.Code != http.StatusOK {
		t.Fatalf("second dig code = %d", rec.Code)
	}
	if v, _ := s.Layers.Variant(autotile.LayerDug, grid.Coord{X: 0, Y: 0}); v != 12 {
		t.Errorf("variant after up neighbor dug = %d, want 12", v)
	}

	if rec := do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false); rec.Code != http.StatusConflict {
		t.Errorf("re-dig code = %d, want 409", rec.Code)
	}
	if rec := do(t, h, "POST", "/api/v1/tile/9/9/dig", "", false); rec.Code != http.StatusConflict {
		t.Errorf("dig on absent tile code = %d, want 409", rec.Code)
	}
}

func TestWater_NeedsDugGround(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	if rec := do(t, h, "POST", "/api/v1/tile/0/0/water", "", false); rec.Code != http.StatusConflict {
		t.Errorf("water on undug code = %d, want 409", rec.Code)
	}
	do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false)
	rec := do(t, h, "POST", "/api/v1/tile/0/0/water", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("water code = %d", rec.Code)
	}
	if resp := decodeTile(t, rec); resp.Tile.DaysSinceWatered != 0 {
		t.Errorf("watered tile = %+v", resp.Tile)
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false)

	rec := do(t, h, "GET", "/api/v1/render", "", false)
	var body struct {
		Scene  string                   `json:"scene"`
		Layers map[string][]render.Cell `json:"layers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	dug := body.Layers[autotile.LayerDug.String()]
	if body.Scene != "Farm" || len(dug) != 1 || dug[0] != (render.Cell{X: 0, Y: 0, Variant: 0}) {
		t.Errorf("render = %+v", body)
	}
	if len(body.Layers[autotile.LayerWatered.String()]) != 0 {
		t.Error("watered layer painted without watering")
	}
}

func TestAdmin_Auth(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	if rec := do(t, h, "POST", "/api/v1/advance", "", false); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token code = %d, want 401", rec.Code)
	}

	s.AdminKey = ""
	if rec := do(t, s.Handler(), "POST", "/api/v1/advance", "", true); rec.Code != http.StatusForbidden {
		t.Errorf("disabled admin code = %d, want 403", rec.Code)
	}
}

func TestAdmin_SwitchScene(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false)

	rec := do(t, h, "POST", "/api/v1/scene/Field", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("switch code = %d", rec.Code)
	}
	if s.Scenes.ActiveScene() != "Field" {
		t.Fatalf("active = %q", s.Scenes.ActiveScene())
	}
	if resp := decodeTile(t, do(t, h, "GET", "/api/v1/tile/2/2", "", false)); !resp.Present || !resp.Tile.CanDropItem {
		t.Errorf("Field tile = %+v", resp)
	}

	do(t, h, "POST", "/api/v1/scene/Farm", "", true)
	if resp := decodeTile(t, do(t, h, "GET", "/api/v1/tile/0/0", "", false)); resp.Tile.DaysSinceDug != 0 {
		t.Errorf("dig lost across scene switch: %+v", resp.Tile)
	}
	if _, ok := s.Layers.Variant(autotile.LayerDug, grid.Coord{X: 0, Y: 0}); !ok {
		t.Error("Farm not redrawn on return")
	}
}

func TestAdmin_SwitchToEmptySceneClearsSurface(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false)
	if s.Layers.Len(autotile.LayerDug) == 0 {
		t.Fatal("dig not painted")
	}

	if rec := do(t, h, "POST", "/api/v1/scene/Cave", "", true); rec.Code != http.StatusOK {
		t.Fatalf("switch code = %d", rec.Code)
	}
	if _, ok := s.Layers.Variant(autotile.LayerDug, grid.Coord{X: 0, Y: 0}); ok {
		t.Error("Farm decoration still shown in Cave")
	}
	if resp := decodeTile(t, do(t, h, "GET", "/api/v1/tile/0/0", "", false)); resp.Present {
		t.Errorf("Cave tile = %+v, want absent", resp)
	}
}

func TestDig_RejectsTileChangedByAdmin(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	// Clearing the flag between requests must be seen by the next dig.
	do(t, h, "PUT", "/api/v1/tile/0/1", `{"diggable": false}`, true)
	if rec := do(t, h, "POST", "/api/v1/tile/0/1/dig", "", false); rec.Code != http.StatusConflict {
		t.Errorf("dig code = %d, want 409", rec.Code)
	}
	if rec := do(t, h, "POST", "/api/v1/tile/9/9/dig", "", false); rec.Code != http.StatusConflict {
		t.Errorf("absent dig code = %d, want 409", rec.Code)
	}
	if resp := decodeTile(t, do(t, h, "GET", "/api/v1/tile/9/9", "", false)); resp.Present {
		t.Error("rejected dig created a tile")
	}
}

func TestAdmin_AdvanceDriesWatering(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false)
	do(t, h, "POST", "/api/v1/tile/0/0/water", "", false)

	rec := do(t, h, "POST", "/api/v1/advance", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance code = %d", rec.Code)
	}
	if s.Eng.CurrentTick() != engine.TicksPerSimDay {
		t.Errorf("tick = %d, want %d", s.Eng.CurrentTick(), engine.TicksPerSimDay)
	}

	resp := decodeTile(t, do(t, h, "GET", "/api/v1/tile/0/0", "", false))
	if resp.Tile.DaysSinceWatered != grid.Unset || resp.Tile.DaysSinceDug != 0 {
		t.Errorf("after advance = %+v", resp.Tile)
	}
	if s.Layers.Len(autotile.LayerWatered) != 0 || s.Layers.Len(autotile.LayerDug) != 1 {
		t.Errorf("layers after advance: dug=%d watered=%d",
			s.Layers.Len(autotile.LayerDug), s.Layers.Len(autotile.LayerWatered))
	}
}

func TestAdmin_SetTile(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), "PUT", "/api/v1/tile/7/8", `{"x": 99, "diggable": true, "is_path": true}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}

	got, ok := s.Scenes.Property(grid.Coord{X: 7, Y: 8})
	want := grid.NewTile(grid.Coord{X: 7, Y: 8})
	want.Diggable, want.IsPath = true, true
	if !ok || got != want {
		t.Errorf("stored = %+v, want %+v", got, want)
	}
	// Setting a property does not paint.
	if s.Layers.Len(autotile.LayerDug) != 0 {
		t.Error("SetTile painted")
	}
}

func TestAdmin_Snapshot(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	if rec := do(t, h, "POST", "/api/v1/snapshot", "", true); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("snapshot without persister code = %d", rec.Code)
	}

	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s.Persister, s.DB = db, db
	h = s.Handler()

	do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false)
	if rec := do(t, h, "POST", "/api/v1/snapshot", "", true); rec.Code != http.StatusOK {
		t.Fatalf("snapshot code = %d: %s", rec.Code, rec.Body)
	}

	farm, found, err := db.LoadScene("Farm")
	if err != nil || !found {
		t.Fatalf("Farm not saved: %v", err)
	}
	if !farm.Lookup(grid.Coord{X: 0, Y: 0}).IsDug() {
		t.Error("saved Farm lost the dig")
	}
	if _, found, _ := db.LoadScene("Field"); !found {
		t.Error("inactive Field not saved")
	}
}

func TestToolRateLimit(t *testing.T) {
	s := newTestServer(t)
	s.ToolRate = 1
	h := s.Handler()

	do(t, h, "POST", "/api/v1/tile/0/0/dig", "", false)
	rec := do(t, h, "POST", "/api/v1/tile/0/1/dig", "", false)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}
