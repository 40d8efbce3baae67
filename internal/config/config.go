package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnv           = "development"
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultWorkerPath    = "./calcworker"
	defaultWorkerTimeout = 5 * time.Second
	defaultHosts         = 4
	defaultScenarioLimit = 4
)

// WorkerMode selects where calculations run.
type WorkerMode string

const (
	WorkerLocal   WorkerMode = "local"
	WorkerProcess WorkerMode = "process"
	WorkerInline  WorkerMode = "inline"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env    string
	DBPath string
	Port   string

	Worker        WorkerMode
	WorkerPath    string
	WorkerTimeout time.Duration
	Hosts         int

	ScenarioConcurrency int
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: %v", err)
	}

	cfg := Config{
		Env:        strings.ToLower(os.Getenv("APP_ENV")),
		DBPath:     os.Getenv("DB_PATH"),
		Port:       os.Getenv("PORT"),
		Worker:     WorkerMode(strings.ToLower(os.Getenv("CALC_WORKER"))),
		WorkerPath: os.Getenv("CALC_WORKER_PATH"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.WorkerPath == "" {
		cfg.WorkerPath = defaultWorkerPath
	}

	switch cfg.Worker {
	case WorkerLocal, WorkerProcess, WorkerInline:
	case "":
		cfg.Worker = WorkerLocal
	default:
		log.Printf("warning: CALC_WORKER %q is not one of local, process, inline; using local", cfg.Worker)
		cfg.Worker = WorkerLocal
	}

	cfg.WorkerTimeout = durationEnv("CALC_WORKER_TIMEOUT", defaultWorkerTimeout)
	cfg.Hosts = positiveIntEnv("CALC_HOSTS", defaultHosts)
	cfg.ScenarioConcurrency = positiveIntEnv("SCENARIO_CONCURRENCY", defaultScenarioLimit)

	return cfg
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Printf("warning: %s %q is not a valid duration; using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func positiveIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("warning: %s %q is not a positive integer; using %d", key, raw, fallback)
		return fallback
	}
	return n
}
