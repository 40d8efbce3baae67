package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/seacost/internal/config"
	"github.com/Simplici0/seacost/internal/db"
	"github.com/Simplici0/seacost/internal/host"
	"github.com/Simplici0/seacost/internal/migrations"
	"github.com/Simplici0/seacost/internal/seed"
)

type server struct {
	store         *db.Store
	hosts         *hostPool
	scenarioLimit int
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database)
	if err != nil {
		log.Fatalf("failed to seed reference data: %v", err)
	}
	if stats.Inserts > 0 || stats.Updates > 0 {
		log.Printf("seeded reference data: %d inserts, %d updates", stats.Inserts, stats.Updates)
	}

	hosts := newHostPool(cfg.Hosts, workerFactory(cfg), host.WithTimeout(cfg.WorkerTimeout))
	defer hosts.Close()
	log.Printf("calculation hosts: %d (%s worker)", cfg.Hosts, cfg.Worker)

	srv := &server{
		store:         db.NewStore(database),
		hosts:         hosts,
		scenarioLimit: cfg.ScenarioConcurrency,
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/defaults", s.handleDefaults)
		r.Get("/product-types", s.handleProductTypes)
		r.Post("/validate", s.handleValidate)
		r.Post("/calculate", s.handleCalculate)
		r.Post("/scenarios", s.handleScenarios)

		r.Route("/batches", func(r chi.Router) {
			r.Get("/", s.handleBatchesList)
			r.Post("/", s.handleBatchesCreate)
			r.Get("/{id}", s.handleBatchDetail)
			r.Get("/{id}/summary", s.handleBatchSummary)
			r.Delete("/{id}", s.handleBatchDelete)
		})
	})
	return r
}

func workerFactory(cfg config.Config) host.Factory {
	switch cfg.Worker {
	case config.WorkerProcess:
		return host.ProcessFactory(cfg.WorkerPath)
	case config.WorkerInline:
		return nil
	default:
		return host.Local
	}
}
