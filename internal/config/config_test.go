package config

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "DB_PATH", "CALC_WORKER", "CALC_WORKER_PATH",
		"CALC_WORKER_TIMEOUT", "CALC_HOSTS", "SCENARIO_CONCURRENCY",
	} {
		unsetenv(t, key)
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != defaultPort || cfg.DBPath != defaultDBPath {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Worker != WorkerLocal {
		t.Fatalf("worker = %q, want %q", cfg.Worker, WorkerLocal)
	}
	if cfg.WorkerTimeout != defaultWorkerTimeout || cfg.Hosts != defaultHosts || cfg.ScenarioConcurrency != defaultScenarioLimit {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected development by default")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/var/lib/seacost.db")
	t.Setenv("CALC_WORKER", "PROCESS")
	t.Setenv("CALC_WORKER_PATH", "/usr/local/bin/calcworker")
	t.Setenv("CALC_WORKER_TIMEOUT", "250ms")
	t.Setenv("CALC_HOSTS", "8")
	t.Setenv("SCENARIO_CONCURRENCY", "2")

	cfg := Load()

	want := Config{
		Env:                 "production",
		DBPath:              "/var/lib/seacost.db",
		Port:                "9090",
		Worker:              WorkerProcess,
		WorkerPath:          "/usr/local/bin/calcworker",
		WorkerTimeout:       250 * time.Millisecond,
		Hosts:               8,
		ScenarioConcurrency: 2,
	}
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
	if cfg.IsDev() {
		t.Fatalf("production must not be dev")
	}
}

func TestLoad_WarnsOnUnusableValues(t *testing.T) {
	clearEnv(t)
	logs := captureLog(t)
	t.Setenv("CALC_WORKER", "gpu")
	t.Setenv("CALC_WORKER_TIMEOUT", "soon")
	t.Setenv("CALC_HOSTS", "0")
	t.Setenv("SCENARIO_CONCURRENCY", "-3")

	cfg := Load()

	if cfg.Worker != WorkerLocal || cfg.WorkerTimeout != defaultWorkerTimeout ||
		cfg.Hosts != defaultHosts || cfg.ScenarioConcurrency != defaultScenarioLimit {
		t.Fatalf("expected fallbacks, got %+v", cfg)
	}
	for _, key := range []string{"CALC_WORKER", "CALC_WORKER_TIMEOUT", "CALC_HOSTS", "SCENARIO_CONCURRENCY"} {
		if !strings.Contains(logs.String(), key) {
			t.Fatalf("expected warning for %s, got %q", key, logs.String())
		}
	}
}
