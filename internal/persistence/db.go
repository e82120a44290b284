// Package persistence provides durable storage for scene property snapshots.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/homestead/internal/grid"
)

// DB wraps a SQLite connection for scene state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tile_properties (
		scene TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		diggable INTEGER NOT NULL,
		can_drop_item INTEGER NOT NULL,
		can_place_furniture INTEGER NOT NULL,
		is_path INTEGER NOT NULL,
		is_npc_obstacle INTEGER NOT NULL,
		days_since_dug INTEGER NOT NULL,
		days_since_watered INTEGER NOT NULL,
		seed_item_code INTEGER NOT NULL,
		growth_days INTEGER NOT NULL,
		days_since_last_harvest INTEGER NOT NULL,
		PRIMARY KEY (scene, x, y)
	);

	CREATE TABLE IF NOT EXISTS saved_scenes (
		scene TEXT PRIMARY KEY,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// tileRow is the column layout of tile_properties.
type tileRow struct {
	Scene                string `db:"scene"`
	X                    int    `db:"x"`
	Y                    int    `db:"y"`
	Diggable             bool   `db:"diggable"`
	CanDropItem          bool   `db:"can_drop_item"`
	CanPlaceFurniture    bool   `db:"can_place_furniture"`
	IsPath               bool   `db:"is_path"`
	IsNPCObstacle        bool   `db:"is_npc_obstacle"`
	DaysSinceDug         int    `db:"days_since_dug"`
	DaysSinceWatered     int    `db:"days_since_watered"`
	SeedItemCode         int    `db:"seed_item_code"`
	GrowthDays           int    `db:"growth_days"`
	DaysSinceLastHarvest int    `db:"days_since_last_harvest"`
}

func (r tileRow) tile() grid.Tile {
	return grid.Tile{
		X:                    r.X,
		Y:                    r.Y,
		Diggable:             r.Diggable,
		CanDropItem:          r.CanDropItem,
		CanPlaceFurniture:    r.CanPlaceFurniture,
		IsPath:               r.IsPath,
		IsNPCObstacle:        r.IsNPCObstacle,
		DaysSinceDug:         r.DaysSinceDug,
		DaysSinceWatered:     r.DaysSinceWatered,
		SeedItemCode:         r.SeedItemCode,
		GrowthDays:           r.GrowthDays,
		DaysSinceLastHarvest: r.DaysSinceLastHarvest,
	}
}

// SaveScene writes a scene snapshot to the database (full replace of that
// scene's rows).
func (db *DB) SaveScene(name string, s *grid.Store) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tile_properties WHERE scene = ?", name); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO tile_properties
		(scene, x, y, diggable, can_drop_item, can_place_furniture, is_path, is_npc_obstacle,
		 days_since_dug, days_since_watered, seed_item_code, growth_days, days_since_last_harvest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range s.Tiles() {
		_, err := stmt.Exec(
			name, t.X, t.Y,
			boolInt(t.Diggable), boolInt(t.CanDropItem), boolInt(t.CanPlaceFurniture),
			boolInt(t.IsPath), boolInt(t.IsNPCObstacle),
			t.DaysSinceDug, t.DaysSinceWatered, t.SeedItemCode, t.GrowthDays, t.DaysSinceLastHarvest,
		)
		if err != nil {
			return fmt.Errorf("insert tile %v: %w", t.Coord(), err)
		}
	}

	// A scene saved with zero tiles still counts as saved.
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO saved_scenes (scene, saved_at) VALUES (?, ?)",
		name, time.Now().Unix(),
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("scene saved", "scene", name, "tiles", humanize.Comma(int64(s.Len())))
	return nil
}

// LoadScene reads a scene snapshot. found is false when the scene was never
// saved.
func (db *DB) LoadScene(name string) (*grid.Store, bool, error) {
	var savedAt int64
	err := db.conn.Get(&savedAt, "SELECT saved_at FROM saved_scenes WHERE scene = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rows []tileRow
	if err := db.conn.Select(&rows, "SELECT * FROM tile_properties WHERE scene = ?", name); err != nil {
		return nil, false, fmt.Errorf("select tiles: %w", err)
	}

	s := grid.NewStore()
	for _, r := range rows {
		s.Set(grid.Coord{X: r.X, Y: r.Y}, r.tile())
	}
	slog.Debug("scene loaded", "scene", name, "tiles", len(rows),
		"saved", humanize.Time(time.Unix(savedAt, 0)))
	return s, true, nil
}

// SceneNames returns every saved scene name.
func (db *DB) SceneNames() ([]string, error) {
	var names []string
	err := db.conn.Select(&names, "SELECT scene FROM saved_scenes ORDER BY scene")
	return names, err
}

// HasState reports whether any scene has been saved.
func (db *DB) HasState() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM saved_scenes"); err != nil {
		return false
	}
	return n > 0
}

// Event is one entry in the farm log.
type Event struct {
	Tick        uint64 `db:"tick" json:"tick"`
	Description string `db:"description" json:"description"`
	Category    string `db:"category" json:"category"`
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveID returns the identity of this save file, creating it on first use.
func (db *DB) SaveID() (string, error) {
	id, err := db.GetMeta("save_id")
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	if err := db.SaveMeta("save_id", id); err != nil {
		return "", fmt.Errorf("save id: %w", err)
	}
	slog.Info("new save file", "save_id", id)
	return id, nil
}

// SaveTick records the clock position so a restart resumes the calendar.
func (db *DB) SaveTick(tick uint64) error {
	if err := db.SaveMeta("last_tick", strconv.FormatUint(tick, 10)); err != nil {
		return err
	}
	return db.SaveMeta("last_saved", strconv.FormatInt(time.Now().Unix(), 10))
}

// LastTick returns the saved clock position, 0 when none.
func (db *DB) LastTick() uint64 {
	v, err := db.GetMeta("last_tick")
	if err != nil {
		return 0
	}
	tick, _ := strconv.ParseUint(v, 10, 64)
	return tick
}

// LastSaved returns when SaveTick last ran, zero when never.
func (db *DB) LastSaved() time.Time {
	v, err := db.GetMeta("last_saved")
	if err != nil {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
