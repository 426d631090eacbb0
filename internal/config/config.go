// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Host             string   `mapstructure:"HOST"`
	Port             int      `mapstructure:"PORT"`
	DBPath           string   `mapstructure:"DB_PATH"`
	Env              string   `mapstructure:"ENV"`
	LogLevel         string   `mapstructure:"LOG_LEVEL"`
	LogFormat        string   `mapstructure:"LOG_FORMAT"`
	DefaultTotalDays int      `mapstructure:"DEFAULT_TOTAL_DAYS"`
	MaxTotalDays     int      `mapstructure:"MAX_TOTAL_DAYS"`
	CORSOrigins      []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 8011)
	v.SetDefault("DB_PATH", "/data/tpn-planner.db")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("DEFAULT_TOTAL_DAYS", 7)
	v.SetDefault("MAX_TOTAL_DAYS", 60)
	v.SetDefault("CORS_ORIGINS", "*")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"HOST", "PORT", "DB_PATH", "ENV", "LOG_LEVEL", "LOG_FORMAT",
		"DEFAULT_TOTAL_DAYS", "MAX_TOTAL_DAYS", "CORS_ORIGINS",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// env values arrive as one comma separated string
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ConsoleLogs reports whether logs should be human readable rather than JSON.
func (c *Config) ConsoleLogs() bool {
	if c.LogFormat != "" {
		return strings.EqualFold(c.LogFormat, "console")
	}
	return c.IsDev()
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the server and schedule limits before anything starts.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.DefaultTotalDays < 1 {
		return fmt.Errorf("DEFAULT_TOTAL_DAYS must be at least 1, got %d", c.DefaultTotalDays)
	}
	if c.MaxTotalDays < c.DefaultTotalDays {
		return fmt.Errorf("MAX_TOTAL_DAYS (%d) must not be below DEFAULT_TOTAL_DAYS (%d)", c.MaxTotalDays, c.DefaultTotalDays)
	}
	if c.LogFormat != "" && !strings.EqualFold(c.LogFormat, "console") && !strings.EqualFold(c.LogFormat, "json") {
		return fmt.Errorf("LOG_FORMAT must be \"console\" or \"json\", got %q", c.LogFormat)
	}
	return nil
}
