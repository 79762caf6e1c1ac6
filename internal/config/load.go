package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
)

// Environment variables read by Load.
const (
	EnvAutotagEnv = "AUTOTAG_ENV"
	EnvNodeEnv    = "NODE_ENV"
	EnvAPIKey     = "AUTOTAG_API_KEY"
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvModel      = "AUTOTAG_MODEL"
	EnvBaseURL    = "AUTOTAG_BASE_URL"
)

// envFiles are loaded in order; variables already set are never replaced,
// so .env.local wins over .env and the process environment wins over both.
var envFiles = []string{".env.local", ".env"}

// Load reads the configuration at path on top of Default, applies the
// environment and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").WithContext("path", path).Build()
		}
		if err != nil {
			return nil, ferrors.ConfigError("failed to read configuration file").WithCause(err).WithContext("path", path).Build()
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, ferrors.ConfigError("failed to parse configuration file").WithCause(err).WithContext("path", path).Build()
		}
		expandEnv(cfg)
	}

	ApplyEnv(cfg)
	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandEnv resolves $VAR and ${VAR} in the fields that name locations or
// credentials. Prompt text is left alone so it can contain "$".
func expandEnv(cfg *Config) {
	for _, f := range []*string{
		&cfg.Content.Root,
		&cfg.Agent.Model,
		&cfg.Agent.Provider,
		&cfg.Agent.APIKey,
		&cfg.Agent.BaseURL,
		&cfg.Cache.Path,
		&cfg.Events.URL,
		&cfg.Events.Subject,
		&cfg.Metrics.Listen,
	} {
		*f = os.ExpandEnv(*f)
	}
}

func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("file", name))
	}
}

// ApplyEnv overlays environment variables on cfg.
func ApplyEnv(cfg *Config) {
	if env, ok := lookupNonEmpty(EnvAutotagEnv); ok {
		cfg.Build.Production = isProduction(env)
	} else if env, ok := lookupNonEmpty(EnvNodeEnv); ok {
		cfg.Build.Production = isProduction(env)
	}

	if key, ok := lookupNonEmpty(EnvAPIKey); ok {
		cfg.Agent.APIKey = key
	} else if cfg.Agent.APIKey == "" {
		cfg.Agent.APIKey = os.Getenv(EnvOpenAIKey)
	}
	if model, ok := lookupNonEmpty(EnvModel); ok {
		cfg.Agent.Model = model
	}
	if base, ok := lookupNonEmpty(EnvBaseURL); ok {
		cfg.Agent.BaseURL = base
	}
}

func isProduction(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "production")
}

func lookupNonEmpty(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// normalize canonicalizes enum spellings; invalid values are left for
// Validate to report.
func normalize(cfg *Config) {
	if lvl, err := logLevels.Parse(string(cfg.Logging.Level)); err == nil {
		cfg.Logging.Level = lvl
	}
	if f, err := logFormats.Parse(string(cfg.Logging.Format)); err == nil {
		cfg.Logging.Format = f
	}
	cfg.Build.Policy = strings.TrimSpace(cfg.Build.Policy)
	cfg.Prompt.Locale = strings.ToLower(strings.TrimSpace(cfg.Prompt.Locale))
}

// Init writes a commented default configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).
			Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	content := "# autotag configuration\n# API keys are read from AUTOTAG_API_KEY or OPENAI_API_KEY.\n" + string(data)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return ferrors.FileSystemError("failed to write configuration file").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
