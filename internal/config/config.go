// Package config loads autotag.yaml.
package config

import "time"

// DefaultPath is the configuration file looked up when -c is not given.
const DefaultPath = "autotag.yaml"

// Config is the complete autotag configuration.
type Config struct {
	Build   BuildConfig   `yaml:"build"`
	Content ContentConfig `yaml:"content"`
	Agent   AgentConfig   `yaml:"agent"`
	Prompt  PromptConfig  `yaml:"prompt"`
	Cache   CacheConfig   `yaml:"cache"`
	Events  EventsConfig  `yaml:"events"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// BuildConfig controls a tagging run.
type BuildConfig struct {
	Production  bool   `yaml:"production"`   // only production builds call the agent
	Policy      string `yaml:"policy"`       // skip_if_present | always_augment
	Concurrency int    `yaml:"concurrency"`  // files processed in parallel
	DryRun      bool   `yaml:"dry_run"`
}

// ContentConfig locates the content tree.
type ContentConfig struct {
	Root         string   `yaml:"root"`
	Dirs         []string `yaml:"content_dirs"` // content-type directories that get tagged
	HeadingTitle bool     `yaml:"heading_title"`
}

// AgentConfig configures the text-generation service.
type AgentConfig struct {
	Model       string        `yaml:"model"` // "model" or "provider/model"
	Provider    string        `yaml:"provider,omitempty"`
	APIKey      string        `yaml:"api_key,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens,omitempty"`
	Temperature float32       `yaml:"temperature,omitempty"`
}

type PromptConfig struct {
	Locale      string `yaml:"locale"`                // ja | en
	Instruction string `yaml:"instruction,omitempty"` // replaces the built-in system instruction
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path"`
	MaxAge  time.Duration `yaml:"max_age"` // 0 keeps entries forever
}

type EventsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URL       string `yaml:"url"`
	Subject   string `yaml:"subject"`
	JetStream bool   `yaml:"jetstream"`
}

type WatchConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	RescanInterval time.Duration `yaml:"rescan_interval"`
	SuppressWindow time.Duration `yaml:"suppress_window"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9464"; empty disables
}

type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Policy:      "skip_if_present",
			Concurrency: 4,
		},
		Content: ContentConfig{
			Root: ".",
			Dirs: []string{"blog"},
		},
		Agent: AgentConfig{
			Model:   "openai/gpt-5-mini",
			Timeout: 60 * time.Second,
		},
		Prompt: PromptConfig{Locale: "ja"},
		Cache: CacheConfig{
			Path: ".autotag/cache.db",
		},
		Events: EventsConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "autotag.tags",
		},
		Watch: WatchConfig{
			Debounce:       300 * time.Millisecond,
			SuppressWindow: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}
