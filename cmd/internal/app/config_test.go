package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ATRIUM_ENV", "")
	t.Setenv("ATRIUM_HTTP_ADDR", "")
	t.Setenv("ATRIUM_FRONTEND_URL", "")

	cfg := LoadConfig()
	if cfg.Env != "development" {
		t.Fatalf("env=%q", cfg.Env)
	}
	if cfg.HTTPAddr != "0.0.0.0:3000" {
		t.Fatalf("addr=%q", cfg.HTTPAddr)
	}
	if cfg.LogFormat != "pretty" {
		t.Fatalf("log format=%q", cfg.LogFormat)
	}
	if cfg.CORSOrigin != "http://localhost:5173" {
		t.Fatalf("cors origin=%q", cfg.CORSOrigin)
	}
	if !cfg.MigrateOnStart {
		t.Fatal("migrations should default on")
	}
}

func TestLoadConfigProduction(t *testing.T) {
	t.Setenv("ATRIUM_ENV", "production")
	t.Setenv("ATRIUM_FRONTEND_URL", "https://atrium.example.com")

	cfg := LoadConfig()
	if cfg.LogFormat != "json" {
		t.Fatalf("log format=%q", cfg.LogFormat)
	}
	if cfg.CORSOrigin != "https://atrium.example.com" {
		t.Fatalf("cors origin=%q", cfg.CORSOrigin)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ATRIUM_TEST_DUR", "90s")
	if got := EnvDuration("ATRIUM_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("duration=%v", got)
	}
	t.Setenv("ATRIUM_TEST_DUR", "bogus")
	if got := EnvDuration("ATRIUM_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("bad duration should fall back, got %v", got)
	}

	t.Setenv("ATRIUM_TEST_INT32", "-5")
	if got := EnvInt32("ATRIUM_TEST_INT32", 7); got != 7 {
		t.Fatalf("negative int32 should fall back, got %d", got)
	}

	t.Setenv("ATRIUM_TEST_BOOL", "true")
	if !EnvBool("ATRIUM_TEST_BOOL", false) {
		t.Fatal("bool parse failed")
	}
}
