package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalYAML = `
environment: test
data:
  root: /tmp/corrscope-data
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("default port = %d", c.Server.Port)
	}
	if c.Correlations.DefaultStartYear != 2010 {
		t.Fatalf("default start year = %d", c.Correlations.DefaultStartYear)
	}
	if got := c.CachePath(); got != filepath.Join("/tmp/corrscope-data", "cache") {
		t.Fatalf("cache path = %s", got)
	}
}

func TestLoadMissingDataRoot(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadWithEnvPortOverride(t *testing.T) {
	t.Setenv("PORT", "9191")
	c, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9191 {
		t.Fatalf("port = %d, want env override 9191", c.Server.Port)
	}
}

func TestLoadWithEnvFredKey(t *testing.T) {
	t.Setenv("FRED_API_KEY", "abc123")
	c, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Fred.APIKey != "abc123" {
		t.Fatalf("fred key = %q", c.Fred.APIKey)
	}
}

func TestValidateKafkaBrokers(t *testing.T) {
	body := minimalYAML + "kafka:\n  enabled: true\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected kafka.brokers validation error")
	}
}
