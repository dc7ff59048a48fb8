package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("tunitrip-test")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Routing.Provider != "osrm" || cfg.Routing.Timeout != 10*time.Second {
		t.Errorf("unexpected routing defaults %+v", cfg.Routing)
	}
	if cfg.Catalog.Source != "json" {
		t.Errorf("expected json catalog, got %q", cfg.Catalog.Source)
	}
	if cfg.Sessions.IdleTimeout != 30*time.Minute {
		t.Errorf("expected 30m idle timeout, got %v", cfg.Sessions.IdleTimeout)
	}
	if cfg.Telemetry.ServiceName != "tunitrip-test" {
		t.Errorf("unexpected service name %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TUNITRIP_ROUTING_PROVIDER", "google")
	t.Setenv("TUNITRIP_ROUTING_GOOGLE_API_KEY", "k")
	t.Setenv("TUNITRIP_PRICES_TIMEOUT", "3s")

	cfg, err := Load("api")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Routing.Provider != "google" || cfg.Routing.GoogleAPIKey != "k" {
		t.Errorf("env not applied: %+v", cfg.Routing)
	}
	if cfg.Prices.Timeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.Prices.Timeout)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TUNITRIP_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TUNITRIP_LOG_LEVEL") })

	cfg, err := Load("api")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected .env to set log level, got %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Routing:  RoutingConfig{Provider: "google", Timeout: time.Second},
		Prices:   PricesConfig{Timeout: time.Second},
		Catalog:  CatalogConfig{Source: "csv"},
		Sessions: SessionsConfig{IdleTimeout: time.Minute, SweepInterval: time.Second},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "google_api_key", "catalog.source"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
