package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
	"git.home.luguber.info/inful/autotag/internal/pipeline"
	"git.home.luguber.info/inful/autotag/internal/tags"
)

// clearEnv isolates a test from the developer's environment and .env files.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAutotagEnv, EnvNodeEnv, EnvAPIKey, EnvOpenAIKey, EnvModel, EnvBaseURL} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autotag.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.False(t, cfg.Build.Production)
	require.Equal(t, pipeline.PolicySkipIfPresent, cfg.TagPolicy())
	require.Equal(t, tags.LocaleJA, cfg.Locale())
	require.Equal(t, []string{"blog"}, cfg.Content.Dirs)
	require.Equal(t, 60*time.Second, cfg.Agent.Timeout)
}

func TestLoad_EmptyPath_UsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Agent.Model, cfg.Agent.Model)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
build:
  production: true
  policy: Always-Augment
  concurrency: 2
content:
  root: site
  content_dirs: [blog, news]
agent:
  model: openrouter/anthropic/claude-sonnet
  timeout: 15s
prompt:
  locale: EN
logging:
  level: DEBUG
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Build.Production)
	require.Equal(t, pipeline.PolicyAlwaysAugment, cfg.TagPolicy())
	require.Equal(t, 2, cfg.Build.Concurrency)
	require.Equal(t, "site", cfg.Content.Root)
	require.Equal(t, []string{"blog", "news"}, cfg.Content.Dirs)
	require.Equal(t, 15*time.Second, cfg.Agent.Timeout)
	require.Equal(t, tags.LocaleEN, cfg.Locale())
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, slog.LevelDebug, cfg.Logging.Level.SlogLevel())
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
	// Untouched sections keep their defaults.
	require.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoad_MissingFile_ConfigError(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_InvalidYAML_ConfigError(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "build: [unclosed"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_InvalidValues_ValidationError(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, `
build:
  policy: sometimes
  concurrency: 0
prompt:
  locale: fr
logging:
  level: trace
events:
  enabled: true
  subject: ""
`))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	for _, field := range []string{"build.policy", "build.concurrency", "prompt.locale", "logging.level", "events.subject"} {
		require.Contains(t, err.Error(), field)
	}
}

func TestApplyEnv_ProductionGate(t *testing.T) {
	cases := []struct {
		name       string
		autotagEnv string
		nodeEnv    string
		fileProd   bool
		want       bool
	}{
		{"node production", "", "production", false, true},
		{"autotag wins over node", "development", "production", false, false},
		{"case insensitive", "PRODUCTION", "", false, true},
		{"unset keeps file value", "", "", true, true},
		{"development overrides file", "", "development", true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvAutotagEnv, tc.autotagEnv)
			t.Setenv(EnvNodeEnv, tc.nodeEnv)
			cfg := Default()
			cfg.Build.Production = tc.fileProd
			ApplyEnv(cfg)
			require.Equal(t, tc.want, cfg.Build.Production)
		})
	}
}

func TestApplyEnv_AgentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenAIKey, "sk-openai")
	cfg := Default()
	ApplyEnv(cfg)
	require.Equal(t, "sk-openai", cfg.Agent.APIKey)

	t.Setenv(EnvAPIKey, "sk-autotag")
	t.Setenv(EnvModel, "deepseek/deepseek-chat")
	t.Setenv(EnvBaseURL, "http://localhost:8080/v1")
	cfg = Default()
	cfg.Agent.APIKey = "from-file"
	ApplyEnv(cfg)
	require.Equal(t, "sk-autotag", cfg.Agent.APIKey)
	require.Equal(t, "deepseek/deepseek-chat", cfg.Agent.Model)
	require.Equal(t, "http://localhost:8080/v1", cfg.Agent.BaseURL)
}

func TestLoad_DotEnvFiles(t *testing.T) {
	clearEnv(t)
	// t.Setenv above registered cleanup; unset so godotenv may fill them.
	require.NoError(t, os.Unsetenv(EnvNodeEnv))
	require.NoError(t, os.Unsetenv(EnvAPIKey))
	require.NoError(t, os.WriteFile(".env", []byte("NODE_ENV=production\nAUTOTAG_API_KEY=from-dotenv\n"), 0o644))
	require.NoError(t, os.WriteFile(".env.local", []byte("AUTOTAG_API_KEY=from-local\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	require.True(t, cfg.Build.Production)
	require.Equal(t, "from-local", cfg.Agent.APIKey)
}

func TestLoad_ExpandsEnvironmentInFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("MY_KEY", "sk-expanded")
	cfg, err := Load(writeConfig(t, "agent:\n  api_key: ${MY_KEY}\n"))
	require.NoError(t, err)
	require.Equal(t, "sk-expanded", cfg.Agent.APIKey)
}

func TestLoad_InstructionKeepsDollarSigns(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME_DIR", "/srv")
	t.Setenv("PRICE", "10")
	cfg, err := Load(writeConfig(t,
		"content:\n  root: $HOME_DIR/site\nprompt:\n  instruction: 'Tag posts about $PRICE and ${HOME_DIR}'\n"))
	require.NoError(t, err)
	require.Equal(t, "/srv/site", cfg.Content.Root)
	require.Equal(t, "Tag posts about $PRICE and ${HOME_DIR}", cfg.Prompt.Instruction)
}

func TestInit_WritesLoadableDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "autotag.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default().Watch, cfg.Watch)
	require.Equal(t, Default().Agent.Timeout, cfg.Agent.Timeout)

	err = Init(path, false)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	require.NoError(t, Init(path, true))
}
