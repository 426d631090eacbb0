package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HOST", "PORT", "DB_PATH", "ENV", "LOG_LEVEL", "LOG_FORMAT",
		"DEFAULT_TOTAL_DAYS", "MAX_TOTAL_DAYS", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8011 {
		t.Errorf("expected default port 8011, got %d", cfg.Port)
	}
	if cfg.DBPath != "/data/tpn-planner.db" {
		t.Errorf("expected default DB path, got %s", cfg.DBPath)
	}
	if cfg.DefaultTotalDays != 7 || cfg.MaxTotalDays != 60 {
		t.Errorf("unexpected day limits %d/%d", cfg.DefaultTotalDays, cfg.MaxTotalDays)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("DEFAULT_TOTAL_DAYS", "10")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Port)
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("expected DB path from env, got %s", cfg.DBPath)
	}
	if cfg.DefaultTotalDays != 10 {
		t.Errorf("expected 10 default days, got %d", cfg.DefaultTotalDays)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Port: 8011, DBPath: "x.db", DefaultTotalDays: 7, MaxTotalDays: 60}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"no db path", func(c *Config) { c.DBPath = "" }},
		{"zero default days", func(c *Config) { c.DefaultTotalDays = 0 }},
		{"max below default", func(c *Config) { c.MaxTotalDays = 3 }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_ConsoleLogs(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.ConsoleLogs() {
		t.Error("development should default to console logs")
	}
	c.LogFormat = "json"
	if c.ConsoleLogs() {
		t.Error("explicit json format should win")
	}
	c = &Config{Env: "production", LogFormat: "console"}
	if !c.ConsoleLogs() {
		t.Error("explicit console format should win")
	}
}
