package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Store struct {
		Dir         string `koanf:"dir"`
		GraceWindow string `koanf:"grace_window"`
	} `koanf:"store"`
	Metrics struct {
		Addr    string `koanf:"addr"`
		Enabled bool   `koanf:"enabled"`
	} `koanf:"metrics"`
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
store:
  dir: "/dev/shm"
  grace_window: "10s"
metrics:
  addr: "127.0.0.1:9465"
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader()
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if dir := l.GetString("store.dir"); dir != "/dev/shm" {
		t.Errorf("store.dir = %q, want %q", dir, "/dev/shm")
	}

	if !l.GetBool("metrics.enabled") {
		t.Error("metrics.enabled should be true")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	err := l.LoadFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	// Empty path should not error
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("SHMAP_STORE_GRACE_WINDOW", "30s")
	t.Setenv("SHMAP_METRICS_ENABLED", "true")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if grace := l.GetString("store.grace_window"); grace != "30s" {
		t.Errorf("store.grace_window = %q, want %q", grace, "30s")
	}
	if !l.GetBool("metrics.enabled") {
		t.Error("metrics.enabled should be true")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_GC_DRY_RUN", "true")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if !l.GetBool("gc.dry_run") {
		t.Errorf("gc.dry_run = %v, want true", l.Get("gc.dry_run"))
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	data := map[string]any{
		"store.dir": "/tmp/segments",
		"debug":     true,
	}

	if err := l.LoadMap(data); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if dir := l.GetString("store.dir"); dir != "/tmp/segments" {
		t.Errorf("store.dir = %q, want %q", dir, "/tmp/segments")
	}

	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Store.Dir != "/tmp/segments" {
		t.Errorf("Store.Dir = %q, want nested unmarshal of dotted key", cfg.Store.Dir)
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	// Create temp config file with low priority value
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
store:
  dir: "/from/file"
  grace_window: "1s"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("SHMAP_STORE_DIR", "/from/env")

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Dir != "/from/env" {
		t.Errorf("Dir = %q, want %q (env should override file)", cfg.Store.Dir, "/from/env")
	}
	if cfg.Store.GraceWindow != "1s" {
		t.Errorf("GraceWindow = %q, want %q from file", cfg.Store.GraceWindow, "1s")
	}
}

func TestLoader_Unmarshal(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
store:
  dir: "/dev/shm"
  grace_window: "10s"
metrics:
  addr: "127.0.0.1:9465"
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Metrics.Addr != "127.0.0.1:9465" {
		t.Errorf("Addr = %q, want %q", cfg.Metrics.Addr, "127.0.0.1:9465")
	}
	if !cfg.Metrics.Enabled {
		t.Error("Enabled should be true")
	}
	if cfg.Store.GraceWindow != "10s" {
		t.Errorf("GraceWindow = %q, want %q", cfg.Store.GraceWindow, "10s")
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()

	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_All(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	all := l.All()
	if len(all) < 2 {
		t.Errorf("All() returned %d keys, want at least 2", len(all))
	}
}

func TestLoader_Keys(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	keys := l.Keys()
	if len(keys) < 2 {
		t.Errorf("Keys() returned %d keys, want at least 2", len(keys))
	}
}

func TestLoader_GetInt(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"port": 8080,
	})

	if port := l.GetInt("port"); port != 8080 {
		t.Errorf("GetInt(port) = %d, want %d", port, 8080)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SHMAP_STORE_DIR", "store.dir"},
		{"SHMAP_STORE_GRACE_WINDOW", "store.grace_window"},
		{"SHMAP_SECURITY_ENCRYPTION_KEY", "security.encryption_key"},
		{"SHMAP_DEBUG", "debug"},
	}
	for _, tt := range tests {
		if got := envKey("SHMAP_", tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
