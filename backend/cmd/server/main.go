package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orrery/backend/internal/adapter/in/configfile"
	"orrery/backend/internal/adapter/in/ws"
	"orrery/backend/internal/adapter/out/assets"
	"orrery/backend/internal/adapter/out/memscene"
	"orrery/backend/internal/config"
	"orrery/backend/internal/core/domain/service/builder"
	"orrery/backend/internal/core/domain/service/builder/stages"
	"orrery/backend/internal/core/domain/service/quantum"
	"orrery/backend/internal/core/domain/service/scheduler"
	"orrery/backend/internal/game"
	"orrery/backend/internal/telemetry"
	"orrery/backend/internal/transport"
	"orrery/backend/internal/world"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	host := memscene.New()
	registry := world.NewRegistry()
	seedBaseWorld(host, registry)

	tm := telemetry.NewManager(logger)
	ticker := game.NewTicker(cfg.TargetFPS, logger)

	orchestrator := builder.NewOrchestrator(builder.Dependencies{
		Host:          host,
		Deferrer:      ticker.Deferred(),
		Assets:        assets.NewProvider(cfg.AssetsDir, logger),
		Registry:      registry,
		Quantum:       quantum.NewBuilder(host, ticker.Deferred(), logger),
		Recorder:      tm,
		Logger:        logger,
		DefaultAnchor: cfg.DefaultAnchor,
	}, stages.Default())

	loadScheduler := scheduler.New(scheduler.Options{
		Builder:      orchestrator,
		Registry:     registry,
		Host:         host,
		Deferrer:     ticker.Deferred(),
		Recorder:     tm,
		Logger:       logger,
		RemovalDelay: cfg.RemovalDelayFrames,
	})
	orchestrator.SetLoader(loadScheduler)
	ticker.RegisterSystem(loadScheduler)
	ticker.RegisterSystem(game.NewStatsSystem(ticker, registry, 0, logger))

	health := transport.NewHealthServer(logger)
	if err := health.Start(cfg.GRPCAddr); err != nil {
		logger.Fatalf("Failed to start health service: %v", err)
	}
	defer health.Stop()
	loadScheduler.OnSessionComplete(func(passes int) {
		health.SetServing(true)
		tm.PrintSummary()
	})

	loader := configfile.NewLoader(cfg.Owner, logger)
	n, err := loader.ScheduleDir(cfg.PlanetsDir, loadScheduler)
	if err != nil {
		logger.Printf("ERROR: %v", err)
	}
	if n == 0 {
		// nothing to build, the base world is ready as is
		health.SetServing(true)
	}

	feed := ws.NewFeed(ws.FeedOptions{
		Bodies:      registry,
		Events:      tm,
		Scene:       host,
		Rate:        cfg.FeedRate,
		Burst:       cfg.FeedBurst,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})
	defer feed.Close()

	if err := ticker.Start(); err != nil {
		logger.Fatalf("Failed to start ticker: %v", err)
	}
	defer ticker.Stop()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           feed.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Printf("Server starting on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("ERROR: HTTP shutdown: %v", err)
	}
}

// seedBaseWorld registers the bodies present before any configuration is applied
func seedBaseWorld(host *memscene.Scene, registry *world.Registry) {
	sun := &world.Body{
		ID:                "SUN",
		Name:              "Sun",
		Root:              host.CreateNode("Sun_Body", 0),
		SphereOfInfluence: 20000,
		Gravity: &world.GravityVolume{
			SurfaceAcceleration: 100,
			SurfaceRadius:       2000,
			Falloff:             world.FalloffInverseSquared,
			Radius:              20000,
		},
	}
	sun.Physics = &world.PhysicsHandle{ID: sun.ID, Mass: sun.Gravity.Mass()}
	registry.Register(sun)
}
