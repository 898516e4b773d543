package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"survey-registry/internal/api"
	"survey-registry/internal/config"
	"survey-registry/internal/platform/logger"
	"survey-registry/internal/state"
	"survey-registry/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "registry.yaml", "YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	snapshots, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		log.Error("open store", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer snapshots.Close()

	// Serve without a snapshot until one is built; /api/reload picks it up.
	snap, err := snapshots.Load(ctx)
	switch {
	case err == nil:
		state.State.SetSnapshot(snap)
		log.Info("snapshot loaded", "run_id", snap.RunID, "people", len(snap.People))
	case errors.Is(err, store.ErrNotFound):
		log.Warn("no snapshot found, serving empty registry", "driver", cfg.Storage.Driver)
	default:
		log.Error("load snapshot", "err", err)
		os.Exit(1)
	}

	handler := api.NewHandler(state.State, snapshots, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Router Setup
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Survey registry is running"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	handler.RegisterRoutes(r)

	log.Info("starting server", "addr", cfg.Server.Addr, "origins", cfg.Server.AllowedOrigins)
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
