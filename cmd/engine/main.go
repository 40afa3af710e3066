package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/behavior/standard"
	"github.com/zeusync/substrate/internal/core/observability/log"
	"github.com/zeusync/substrate/internal/core/world"
	"github.com/zeusync/substrate/internal/injector"
	"github.com/zeusync/substrate/internal/inspector"
)

const statsEvery = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "world config file (YAML)")
	blueprintPath := flag.String("blueprints", "", "blueprint file (YAML or JSON)")
	flag.Parse()

	if err := run(*configPath, *blueprintPath); err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
}

func run(configPath, blueprintPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	w := injector.InitializeWorld(cfg)
	logger := w.Logger()

	if blueprintPath != "" {
		bps, err := loadBlueprints(blueprintPath)
		if err != nil {
			return err
		}
		reg := behavior.NewRegistry()
		standard.RegisterBuiltins(reg)
		ids, err := bps.SpawnAll(w, reg)
		if err != nil {
			return fmt.Errorf("spawn %s: %w", blueprintPath, err)
		}
		logger.Info("blueprints spawned", log.String("file", blueprintPath), log.Int("objects", len(ids)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Inspector.Addr != "" {
		insp := inspector.New(logger)
		w.SetSink(insp)
		serveInspector(ctx, g, cfg.Inspector.Addr, insp, logger)
	}

	g.Go(func() error { return w.Run(ctx) })
	g.Go(func() error { return reportStats(ctx, w, logger) })

	return g.Wait()
}

func serveInspector(ctx context.Context, g *errgroup.Group, addr string, insp *inspector.Inspector, logger log.Log) {
	mux := http.NewServeMux()
	mux.Handle("/ws", insp)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		logger.Info("inspector listening", log.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("inspector: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = insp.Close()
		return srv.Shutdown(shutdown)
	})
}

// reportStats logs world counters from the tick goroutine.
func reportStats(ctx context.Context, w *world.World, logger log.Log) error {
	ticker := time.NewTicker(statsEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := w.Post(func(w *world.World) {
				st := w.Stats()
				logger.Info("world stats",
					log.Uint64("ticks", st.Ticks),
					log.Int("objects", st.Objects),
					log.Int("behaviors", st.Behaviors),
					log.Int("timers", st.Timers),
					log.Uint64("faults", st.Faults),
					log.Float64("fps", st.FPS),
					log.Duration("last_tick", st.LastTick),
				)
			})
			if err != nil {
				logger.Warn("stats skipped", log.Error(err))
			}
		}
	}
}

func loadConfig(path string) (world.Config, error) {
	if path == "" {
		return world.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return world.Config{}, err
	}
	defer f.Close()
	return world.LoadConfigYAML(f)
}

func loadBlueprints(path string) (*world.Blueprints, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return world.LoadBlueprintsJSON(f)
	}
	return world.LoadBlueprintsYAML(f)
}
