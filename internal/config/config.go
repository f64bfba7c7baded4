// Package config collects every environment-provided option into one
// explicit struct, validated once at startup.
//
// WHY A CONFIG STRUCT INSTEAD OF SCATTERED os.Getenv CALLS?
// With ambient env lookups, the full configuration surface of the app is
// invisible — you find options by grepping. One struct with tagged fields
// documents every knob, its env var, and its default in a single place,
// and lets us fail fast on bad values instead of at first use.
//
// cleanenv reads the `env` and `env-default` tags below straight from the
// process environment. main additionally loads a .env file via godotenv
// before calling Load, so local development works without exporting
// anything.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// defaultSessionSecret is the development fallback. Production refuses to
// start with it — see Validate.
const defaultSessionSecret = "codespace_secret_key"

// Config holds all runtime configuration.
//
//	PORT            listening port                        (default 3001)
//	DB_PATH         SQLite database file                  (default data/codespace.db)
//	SESSION_SECRET  key for hashing session tokens at rest
//	OLLAMA_URL      feedback service base URL             (default http://localhost:11434)
//	OLLAMA_MODEL    feedback model name                   (default gemma2:2b)
//	FRONTEND_URL    allowed cross-origin caller           (default http://localhost:3001)
//	APP_ENV         "development" or "production"
type Config struct {
	Port          int    `env:"PORT" env-default:"3001"`
	DBPath        string `env:"DB_PATH" env-default:"data/codespace.db"`
	SessionSecret string `env:"SESSION_SECRET" env-default:"codespace_secret_key"`
	OllamaURL     string `env:"OLLAMA_URL" env-default:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" env-default:"gemma2:2b"`
	FrontendURL   string `env:"FRONTEND_URL" env-default:"http://localhost:3001"`
	Env           string `env:"APP_ENV" env-default:"development"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("config: APP_ENV must be \"development\" or \"production\", got %q", c.Env)
	}
	if c.OllamaURL == "" {
		return fmt.Errorf("config: OLLAMA_URL must not be empty")
	}
	if c.OllamaModel == "" {
		return fmt.Errorf("config: OLLAMA_MODEL must not be empty")
	}
	// The development fallback secret is public knowledge (it's in this
	// file). Refuse to run production with it.
	if c.IsProduction() && c.SessionSecret == defaultSessionSecret {
		return fmt.Errorf("config: SESSION_SECRET must be set to a random value in production")
	}
	return nil
}

// IsProduction reports whether the app runs in production mode. It gates
// the Secure flag on the session cookie.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
