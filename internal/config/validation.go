package config

import (
	"git.home.luguber.info/inful/autotag/internal/foundation"
	"git.home.luguber.info/inful/autotag/internal/pipeline"
	"git.home.luguber.info/inful/autotag/internal/tags"
)

// Validate checks cfg and reports every problem in one validation error.
func (c *Config) Validate() error {
	var vr foundation.ValidationResult

	if _, err := pipeline.ParsePolicy(c.Build.Policy); err != nil {
		vr.Addf("build.policy", "%v", err)
	}
	vr.Check(c.Build.Concurrency > 0, "build.concurrency", "must be positive")
	vr.Check(c.Content.Root != "", "content.root", "must not be empty")

	vr.Check(c.Agent.Timeout > 0, "agent.timeout", "must be positive")
	vr.Check(c.Agent.MaxTokens >= 0, "agent.max_tokens", "must not be negative")
	vr.Check(c.Agent.Temperature >= 0 && c.Agent.Temperature <= 2, "agent.temperature", "must be between 0 and 2")

	if _, err := tags.ParseLocale(c.Prompt.Locale); err != nil {
		vr.Addf("prompt.locale", "%v", err)
	}

	if c.Cache.Enabled {
		vr.Check(c.Cache.Path != "", "cache.path", "must be set when the cache is enabled")
	}
	vr.Check(c.Cache.MaxAge >= 0, "cache.max_age", "must not be negative")

	if c.Events.Enabled {
		vr.Check(c.Events.Subject != "", "events.subject", "must be set when events are enabled")
	}

	vr.Check(c.Watch.Debounce >= 0, "watch.debounce", "must not be negative")
	vr.Check(c.Watch.RescanInterval >= 0, "watch.rescan_interval", "must not be negative")
	vr.Check(c.Watch.SuppressWindow >= 0, "watch.suppress_window", "must not be negative")

	if _, err := logLevels.Parse(string(c.Logging.Level)); err != nil {
		vr.Addf("logging.level", "%v", err)
	}
	if _, err := logFormats.Parse(string(c.Logging.Format)); err != nil {
		vr.Addf("logging.format", "%v", err)
	}

	return vr.ToError()
}

// TagPolicy returns the parsed build.policy.
func (c *Config) TagPolicy() pipeline.Policy {
	p, err := pipeline.ParsePolicy(c.Build.Policy)
	if err != nil {
		return pipeline.PolicySkipIfPresent
	}
	return p
}

// Locale returns the parsed prompt.locale.
func (c *Config) Locale() tags.Locale {
	l, err := tags.ParseLocale(c.Prompt.Locale)
	if err != nil {
		return tags.LocaleJA
	}
	return l
}
