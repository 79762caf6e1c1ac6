package commands

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/autotag/internal/agent"
	"git.home.luguber.info/inful/autotag/internal/config"
	"git.home.luguber.info/inful/autotag/internal/events"
	"git.home.luguber.info/inful/autotag/internal/logfields"
	"git.home.luguber.info/inful/autotag/internal/metrics"
	"git.home.luguber.info/inful/autotag/internal/pipeline"
	"git.home.luguber.info/inful/autotag/internal/tagcache"
	"git.home.luguber.info/inful/autotag/internal/tags"
)

// Global carries process-wide dependencies into commands.
type Global struct {
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"autotag.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Tag     TagCmd     `cmd:"" help:"Tag content files in place"`
	Suggest SuggestCmd `cmd:"" help:"Print suggested tags for one file without writing"`
	Watch   WatchCmd   `cmd:"" help:"Tag content files and keep re-tagging on changes"`
	Init    InitCmd    `cmd:"" help:"Write a default configuration file"`
}

// AfterApply runs after flag parsing; installs the default logger until the
// configuration has been read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	setupLogging(os.Stderr, level, config.LogFormatText)
	return nil
}

func setupLogging(w io.Writer, level slog.Level, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the configuration named by -c. The default file is
// optional; an explicitly named file must exist.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.Config
	if filepath.Base(path) == config.DefaultPath {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			slog.Debug("No configuration file; using defaults", logfields.Path(path))
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	setupLogging(os.Stderr, level, cfg.Logging.Format)
	return cfg, nil
}

// RunFlags are the flags shared by commands that run the pipeline.
type RunFlags struct {
	Production  bool   `help:"Call the model regardless of AUTOTAG_ENV/NODE_ENV"`
	Policy      string `help:"Existing-tag policy (skip_if_present|always_augment)"`
	Concurrency int    `help:"Files processed in parallel"`
}

func (o RunFlags) apply(cfg *config.Config) error {
	if o.Production {
		cfg.Build.Production = true
	}
	if o.Policy != "" {
		cfg.Build.Policy = o.Policy
	}
	if o.Concurrency != 0 {
		cfg.Build.Concurrency = o.Concurrency
	}
	return cfg.Validate()
}

// runtime holds the wired components for one command invocation.
type runtime struct {
	generator *tags.Generator
	publisher events.Publisher
	cache     *tagcache.Store
}

func newRuntime(ctx context.Context, cfg *config.Config, recorder metrics.Recorder) (*runtime, error) {
	rt := &runtime{publisher: events.NoopPublisher{}}

	instruction := cfg.Prompt.Instruction
	if instruction == "" {
		instruction = tags.Instruction(cfg.Locale())
	}

	var tagAgent tags.Agent
	if cfg.Build.Production {
		oa, err := agent.NewOpenAI(agent.Config{
			Model:       cfg.Agent.Model,
			Provider:    cfg.Agent.Provider,
			APIKey:      cfg.Agent.APIKey,
			BaseURL:     cfg.Agent.BaseURL,
			Instruction: instruction,
			MaxTokens:   cfg.Agent.MaxTokens,
			Temperature: cfg.Agent.Temperature,
		})
		if err != nil {
			// Every file falls back to its existing tags.
			slog.Warn("Tag agent unavailable; existing tags will be kept", logfields.Error(err))
		} else {
			slog.Info("Tag agent configured", logfields.Provider(oa.Provider()), logfields.Model(oa.Model()))
			tagAgent = oa
			if cfg.Cache.Enabled {
				store, err := openCache(ctx, cfg.Cache)
				if err != nil {
					return nil, err
				}
				rt.cache = store
				tagAgent = tagcache.Wrap(oa, store, oa.Provider()+"/"+oa.Model(), instruction, recorder)
			}
		}
	}

	rt.generator = tags.NewGenerator(tagAgent,
		tags.WithProduction(cfg.Build.Production),
		tags.WithLocale(cfg.Locale()),
		tags.WithRecorder(recorder),
	)

	if cfg.Events.Enabled {
		pub, err := events.NewNATSPublisher(events.NATSConfig{
			URL:       cfg.Events.URL,
			Subject:   cfg.Events.Subject,
			JetStream: cfg.Events.JetStream,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.publisher = pub
	}
	return rt, nil
}

// cacheEntries returns the response cache size, or nil without a cache.
func (rt *runtime) cacheEntries(ctx context.Context) *int {
	if rt.cache == nil {
		return nil
	}
	n, err := rt.cache.Count(ctx)
	if err != nil {
		slog.Warn("Failed to count tag cache entries", logfields.Error(err))
		return nil
	}
	return &n
}

func openCache(ctx context.Context, cfg config.CacheConfig) (*tagcache.Store, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, err
		}
	}
	store, err := tagcache.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	if cfg.MaxAge > 0 {
		removed, err := store.Purge(ctx, time.Now().Add(-cfg.MaxAge))
		if err != nil {
			slog.Warn("Failed to purge tag cache", logfields.Error(err))
		} else if removed > 0 {
			slog.Info("Purged expired tag cache entries", slog.Int64("removed", removed))
		}
	}
	return store, nil
}

func (rt *runtime) pipeline(cfg *config.Config, dryRun bool, opts ...pipeline.Option) *pipeline.Pipeline {
	opts = append([]pipeline.Option{pipeline.WithPublisher(rt.publisher)}, opts...)
	return pipeline.New(rt.generator, pipeline.Config{
		ContentDirs:  cfg.Content.Dirs,
		Policy:       cfg.TagPolicy(),
		Timeout:      cfg.Agent.Timeout,
		Concurrency:  cfg.Build.Concurrency,
		HeadingTitle: cfg.Content.HeadingTitle,
		DryRun:       dryRun || cfg.Build.DryRun,
	}, opts...)
}

func (rt *runtime) Close() {
	if rt.publisher != nil {
		if err := rt.publisher.Close(); err != nil {
			slog.Warn("Failed to close event publisher", logfields.Error(err))
		}
	}
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			slog.Warn("Failed to close tag cache", logfields.Error(err))
		}
	}
}

// contentRoot picks the positional path, then content.root.
func contentRoot(arg string, cfg *config.Config) string {
	if arg != "" {
		return arg
	}
	return cfg.Content.Root
}
