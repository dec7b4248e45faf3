// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/changeagent/internal/platform/logger"
)

// Environments.
const (
	Development = "development"
	Staging     = "staging"
	Production  = "production"
)

// DefaultPort matches the port the web client expects.
const DefaultPort = 5001

// Config is the resolved runtime configuration.
type Config struct {
	Environment string
	Port        int
	LogMode     string

	// DBPath overrides the default SQLite location when set.
	DBPath string
	// StaticDir is served at / with SPA fallback when set.
	StaticDir string

	// OpenRouterKey authenticates the chat proxy.
	OpenRouterKey string
}

// Load reads the environment. Unparseable values fall back to defaults.
func Load() Config {
	return Config{
		Environment:   DetectEnvironment(),
		Port:          envInt("PORT", DefaultPort),
		LogMode:       envString("LOG_MODE", ""),
		DBPath:        envString("CHANGEAGENT_DB", ""),
		StaticDir:     envString("CHANGEAGENT_STATIC_DIR", ""),
		OpenRouterKey: envString("CHANGEAGENT_OPENROUTER_API_KEY", envString("OPENROUTER_KEY", "")),
	}
}

// DetectEnvironment prefers APP_ENV, then NODE_ENV, then development.
// Hosted deployments (REPL_ID set) default to staging.
func DetectEnvironment() string {
	if v := envString("APP_ENV", ""); v != "" {
		return strings.ToLower(v)
	}
	if envString("REPL_ID", "") != "" {
		return strings.ToLower(envString("ENVIRONMENT", Staging))
	}
	return strings.ToLower(envString("NODE_ENV", Development))
}

func (c Config) IsDevelopment() bool { return c.Environment == Development }
func (c Config) IsProduction() bool  { return c.Environment == Production }

// ResolvedLogMode is LOG_MODE, or "production" outside development.
func (c Config) ResolvedLogMode() string {
	if c.LogMode != "" {
		return c.LogMode
	}
	if c.IsDevelopment() {
		return Development
	}
	return Production
}

// Summary logs the configuration without exposing secrets.
func (c Config) Summary(log *logger.Logger) {
	log.Info("configuration loaded",
		"environment", c.Environment,
		"port", c.Port,
		"static_dir", c.StaticDir,
		"openrouter", setOrNot(c.OpenRouterKey),
	)
}

func setOrNot(v string) string {
	if v == "" {
		return "[NOT SET]"
	}
	return "[SET]"
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}
