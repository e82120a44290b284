// Command farmsim runs the homestead: scene property stores, the day clock,
// the HTTP API and, optionally, a terminal view of the decoration layers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/homestead/internal/api"
	"github.com/talgya/homestead/internal/autotile"
	"github.com/talgya/homestead/internal/config"
	"github.com/talgya/homestead/internal/engine"
	"github.com/talgya/homestead/internal/grid"
	"github.com/talgya/homestead/internal/persistence"
	"github.com/talgya/homestead/internal/render"
	"github.com/talgya/homestead/internal/scene"
)

func main() {
	if err := run(); err != nil {
		slog.Error("farmsim failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig(os.Getenv("HOMESTEAD_CONFIG"))
	if err != nil {
		return err
	}

	// ── Render surface ────────────────────────────────────────────────
	var (
		surface autotile.Surface
		layers  *render.Layers
		term    *render.Terminal
		logOut  io.Writer = os.Stdout
	)
	if cfg.Terminal {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("terminal init: %w", err)
		}
		defer screen.Fini()

		_, h := screen.Size()
		term = render.NewTerminal(screen, grid.Coord{X: 0, Y: h - 1})
		surface, layers = term, term.Layers()

		// The screen owns stdout; logs go to a file beside the database.
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		logFile, err := os.OpenFile(filepath.Join(filepath.Dir(cfg.DBPath), "farmsim.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer logFile.Close()
		logOut = logFile
	} else {
		layers = render.NewLayers()
		surface = layers
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	slog.Info("Homestead starting", "scenes", len(cfg.Scenes), "backend", cfg.SaveBackend)

	// ── Persistence ───────────────────────────────────────────────────
	persister, db, err := openPersister(cfg)
	if err != nil {
		return err
	}
	var saveID string
	if db != nil {
		defer db.Close()
		if saveID, err = db.SaveID(); err != nil {
			return err
		}
		slog.Info("database opened", "path", cfg.DBPath, "save_id", saveID)
	}

	// ── Scenes ────────────────────────────────────────────────────────
	coord := scene.NewCoordinator(surface)
	coord.Initialize(cfg.Definitions(), cfg.StartingScene)

	if persister != nil {
		restored, err := coord.RestoreFrom(persister)
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		slog.Info("scenes restored", "restored", restored, "configured", len(cfg.Scenes))
		coord.SetPersister(persister)
	}
	if cfg.StartingScene != "" {
		coord.Activate(cfg.StartingScene)
	}

	// ── Clock ─────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = cfg.TickInterval
	eng.SetSpeed(cfg.Speed)
	if db != nil {
		eng.SetTick(db.LastTick())
	}

	save := func(reason string) {
		if persister == nil {
			return
		}
		start := time.Now()
		if err := coord.SaveAll(persister); err != nil {
			slog.Error("save failed", "reason", reason, "error", err)
			return
		}
		if db != nil {
			if err := db.SaveTick(eng.CurrentTick()); err != nil {
				slog.Error("tick save failed", "error", err)
			}
		}
		slog.Info("scenes saved", "reason", reason, "took", time.Since(start).Round(time.Millisecond))
	}

	eng.OnDay = func(day engine.DayEvent) {
		dried := coord.AdvanceDay()
		if db != nil {
			err := db.SaveEvents([]persistence.Event{{
				Tick:        day.Tick,
				Description: fmt.Sprintf("%s began, %s tiles dried", day, humanize.Comma(int64(dried))),
				Category:    "day",
			}})
			if err != nil {
				slog.Warn("failed to log day", "error", err)
			}
		}
		// Auto-save daily.
		save("daily")
	}
	eng.OnSeason = func(day engine.DayEvent) {
		slog.Info("season changed", "season", engine.SeasonName(day.Season), "year", day.Year)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("HOMESTEAD_ADMIN_KEY not set, admin endpoints will be disabled")
	}
	apiServer := &api.Server{
		Scenes:    coord,
		Eng:       eng,
		Layers:    layers,
		Persister: persister,
		DB:        db,
		Port:      cfg.APIPort,
		AdminKey:  cfg.AdminKey,
		SaveID:    saveID,
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return eng.Run(ctx) })
	g.Go(func() error { return apiServer.Run(ctx) })
	if term != nil {
		g.Go(func() error { return runTerminal(ctx, term, stop) })
	}

	slog.Info("Homestead is running",
		"api", fmt.Sprintf("http://localhost:%d/api/v1/status", cfg.APIPort),
		"scene", coord.ActiveScene(),
		"sim_time", engine.SimTime(eng.CurrentTick()),
	)

	err = g.Wait()

	// Final save on shutdown.
	save("shutdown")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Homestead stopped")
	return nil
}

// openPersister opens the configured save backend. The persister is nil when
// persistence is disabled; db is set only for the SQLite backend.
func openPersister(cfg *config.Config) (scene.Persister, *persistence.DB, error) {
	switch cfg.SaveBackend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := persistence.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.BackendGdata:
		gs, err := persistence.OpenGdata(cfg.GdataApp)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("gdata store opened", "app", cfg.GdataApp)
		return gs, nil, nil
	default:
		slog.Warn("persistence disabled, scene changes are lost on exit")
		return nil, nil, nil
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		cfg.ApplyEnv()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

// runTerminal refreshes the screen and quits on q, Esc or Ctrl+C.
func runTerminal(ctx context.Context, term *render.Terminal, quit context.CancelFunc) error {
	screen := term.Screen()
	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			term.Show()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					quit()
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}
}
