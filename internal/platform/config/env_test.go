package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port    int           `env:"PAGESYNC_TEST_PORT" envDefault:"123"`
	Live    bool          `env:"PAGESYNC_TEST_LIVE" envDefault:"false"`
	Timeout time.Duration `env:"PAGESYNC_TEST_TIMEOUT" envDefault:"2s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Live {
		t.Fatal("expected live to default to false")
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("expected default timeout 2s, got %v", cfg.Timeout)
	}
}

func TestParseEnvReadsProcessEnvironment(t *testing.T) {
	t.Setenv("PAGESYNC_TEST_PORT", "9000")
	t.Setenv("PAGESYNC_TEST_LIVE", "true")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 9000 || !cfg.Live {
		t.Fatalf("cfg = %+v, want port 9000 and live", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PAGESYNC_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvFromIgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("PAGESYNC_TEST_PORT", "9000")

	var cfg envTestConfig
	if err := ParseEnvFrom(&cfg, map[string]string{"PAGESYNC_TEST_TIMEOUT": "5s"}); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("expected timeout 5s, got %v", cfg.Timeout)
	}

	var empty envTestConfig
	if err := ParseEnvFrom(&empty, nil); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if empty.Port != 123 {
		t.Fatalf("expected default port 123, got %d", empty.Port)
	}
}
