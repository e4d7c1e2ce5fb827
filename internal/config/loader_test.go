package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("expected loopback default host, got %q", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18890 {
		t.Errorf("unexpected default port %d", cfg.Gateway.Port)
	}
	if cfg.Router.DefaultPersona != "personal_assistant" {
		t.Errorf("unexpected default persona %q", cfg.Router.DefaultPersona)
	}
	if cfg.Session.MaxHistory != 40 {
		t.Errorf("unexpected history cap %d", cfg.Session.MaxHistory)
	}
	if cfg.Model.MaxToolIterations != 8 {
		t.Errorf("unexpected iteration budget %d", cfg.Model.MaxToolIterations)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"gateway": {"host": "0.0.0.0", "port": 9999},
		"router": {"defaultPersona": "memory_librarian"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("ROUTECLAW_CONFIG", path)
	t.Setenv("ROUTECLAW_ENV_FILE", filepath.Join(dir, "no-env-file"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.Host != "0.0.0.0" || cfg.Gateway.Port != 9999 {
		t.Errorf("file values not applied: %+v", cfg.Gateway)
	}
	if cfg.Router.DefaultPersona != "memory_librarian" {
		t.Errorf("expected file persona, got %q", cfg.Router.DefaultPersona)
	}
	// Untouched groups keep their defaults.
	if cfg.Session.MaxHistory != 40 {
		t.Errorf("expected default history cap, got %d", cfg.Session.MaxHistory)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"gateway": {"port": 9999}}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("ROUTECLAW_CONFIG", path)
	t.Setenv("ROUTECLAW_ENV_FILE", filepath.Join(dir, "no-env-file"))
	t.Setenv("ROUTECLAW_GATEWAY_PORT", "7777")
	t.Setenv("ROUTECLAW_SESSION_MAX_HISTORY", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.Port != 7777 {
		t.Errorf("env must override file, got port %d", cfg.Gateway.Port)
	}
	if cfg.Session.MaxHistory != 10 {
		t.Errorf("env must override default, got %d", cfg.Session.MaxHistory)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROUTECLAW_CONFIG", filepath.Join(dir, "does-not-exist.json"))
	t.Setenv("ROUTECLAW_ENV_FILE", filepath.Join(dir, "no-env-file"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.Port != 18890 {
		t.Errorf("expected defaults, got port %d", cfg.Gateway.Port)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("ROUTECLAW_CONFIG", path)
	t.Setenv("ROUTECLAW_ENV_FILE", filepath.Join(dir, "no-env-file"))

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestLoadAPIKeyFallback(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROUTECLAW_CONFIG", filepath.Join(dir, "none.json"))
	t.Setenv("ROUTECLAW_ENV_FILE", filepath.Join(dir, "no-env-file"))
	t.Setenv("ROUTECLAW_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Providers.OpenAI.APIKey != "sk-fallback" {
		t.Errorf("expected OPENAI_API_KEY fallback, got %q", cfg.Providers.OpenAI.APIKey)
	}
}

func TestLoadDerivesStatePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROUTECLAW_CONFIG", filepath.Join(dir, "none.json"))
	t.Setenv("ROUTECLAW_ENV_FILE", filepath.Join(dir, "no-env-file"))
	t.Setenv("ROUTECLAW_PATHS_STATE_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.TranscriptDB != filepath.Join(dir, "transcript.db") {
		t.Errorf("unexpected transcript path %q", cfg.Paths.TranscriptDB)
	}
	if cfg.Paths.SessionsDir != filepath.Join(dir, "sessions") {
		t.Errorf("unexpected sessions path %q", cfg.Paths.SessionsDir)
	}
}

func TestEnvFileParsing(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env")
	content := "# comment\nROUTECLAW_TEST_VALUE=\"quoted\"\nexport ROUTECLAW_TEST_EXPORTED=plain\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("ROUTECLAW_ENV_FILE", envPath)
	t.Setenv("ROUTECLAW_TEST_VALUE", "")
	os.Unsetenv("ROUTECLAW_TEST_VALUE")
	os.Unsetenv("ROUTECLAW_TEST_EXPORTED")

	LoadEnvFileCandidates()

	if got := os.Getenv("ROUTECLAW_TEST_VALUE"); got != "quoted" {
		t.Errorf("expected quotes stripped, got %q", got)
	}
	if got := os.Getenv("ROUTECLAW_TEST_EXPORTED"); got != "plain" {
		t.Errorf("expected export prefix handled, got %q", got)
	}
}
