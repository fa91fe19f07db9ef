package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("RELAYHUB_CONFIG")
	defer os.Setenv("RELAYHUB_CONFIG", originalEnv)

	os.Setenv("RELAYHUB_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
site:
  id: test-hub

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 19301
  timeouts:
    read: 5
    write: 5
    idle: 5
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("RELAYHUB_CONFIG")
	defer os.Setenv("RELAYHUB_CONFIG", originalEnv)
	os.Setenv("RELAYHUB_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_StartupAndShutdown verifies a full startup with optional
// integrations disabled, then a clean shutdown on context cancellation.
func TestRun_StartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "relayhub-test.db")

	configContent := `
site:
  id: test-hub

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 19302
  timeouts:
    read: 5
    write: 5
    idle: 5
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("RELAYHUB_CONFIG")
	defer os.Setenv("RELAYHUB_CONFIG", originalEnv)
	os.Setenv("RELAYHUB_CONFIG", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- run(ctx)
	}()

	// Give startup time to complete, then trigger shutdown.
	time.Sleep(500 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() returned error on clean shutdown: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not shut down within 10 seconds")
	}

	// The database file should exist after a full startup.
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
}

// TestGetConfigPath verifies the environment override.
func TestGetConfigPath(t *testing.T) {
	originalEnv := os.Getenv("RELAYHUB_CONFIG")
	defer os.Setenv("RELAYHUB_CONFIG", originalEnv)

	os.Unsetenv("RELAYHUB_CONFIG")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("expected default path %q, got %q", defaultConfigPath, got)
	}

	os.Setenv("RELAYHUB_CONFIG", "/etc/relayhub/config.yaml")
	if got := getConfigPath(); got != "/etc/relayhub/config.yaml" {
		t.Errorf("expected override path, got %q", got)
	}
}
