package tags

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
	"git.home.luguber.info/inful/autotag/internal/logfields"
	"git.home.luguber.info/inful/autotag/internal/metrics"
)

// ErrNoAgent is the failure recorded when a production generator has no agent.
var ErrNoAgent = errors.New("no text-generation agent configured")

// Agent is a text-generation service: one prompt in, free text out.
type Agent interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request is the input for one content file.
type Request struct {
	Title        string // "" when the file has no title
	Content      string
	ExistingTags []string
}

// Outcome describes which path the generator took.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"   // non-production build, no call made
	OutcomeGenerated Outcome = "generated" // agent answered, tags merged
	OutcomeFallback  Outcome = "fallback"  // agent failed, existing tags returned
)

// Result is the detailed form of a generation. Err is set only for
// OutcomeFallback and is informational.
type Result struct {
	Tags      []string
	Generated []string
	Outcome   Outcome
	Err       error
}

// Generator produces tags for content files. It holds no mutable state and
// is safe for concurrent use.
type Generator struct {
	agent      Agent
	production bool
	locale     Locale
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithProduction enables the agent call. Generators default to
// non-production and return existing tags untouched.
func WithProduction(production bool) Option {
	return func(g *Generator) { g.production = production }
}

func WithLocale(locale Locale) Option {
	return func(g *Generator) { g.locale = locale }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = metrics.OrNoop(r) }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator creates a Generator backed by agent.
func NewGenerator(agent Agent, opts ...Option) *Generator {
	g := &Generator{
		agent:    agent,
		locale:   LocaleJA,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Production reports whether the generator calls the agent.
func (g *Generator) Production() bool { return g.production }

// Generate returns the final tag list for req. It never fails.
func (g *Generator) Generate(ctx context.Context, req Request) []string {
	return g.Run(ctx, req).Tags
}

// Run is Generate with the outcome attached.
func (g *Generator) Run(ctx context.Context, req Request) Result {
	res := g.run(ctx, req)
	g.recorder.IncOutcome(string(res.Outcome))
	return res
}

func (g *Generator) run(ctx context.Context, req Request) Result {
	existing := req.ExistingTags
	if existing == nil {
		existing = []string{}
	}

	if !g.production {
		g.logger.Debug("Non-production build; skipping AI tag generation")
		return Result{Tags: existing, Outcome: OutcomeSkipped}
	}

	raw, err := g.call(ctx, req)
	if err != nil {
		g.logger.Warn("Tag agent failed; falling back to existing tags",
			logfields.Category(string(ferrors.GetCategory(err))),
			logfields.TagCount(len(existing)),
			logfields.Error(err))
		return Result{Tags: existing, Outcome: OutcomeFallback, Err: err}
	}

	generated := ParseResponse(raw)
	return Result{
		Tags:      Merge(existing, generated),
		Generated: generated,
		Outcome:   OutcomeGenerated,
	}
}

// call performs the single agent attempt. Panics inside the agent are
// reported as errors.
func (g *Generator) call(ctx context.Context, req Request) (raw string, err error) {
	if g.agent == nil {
		return "", ErrNoAgent
	}
	prompt, err := BuildPrompt(g.locale, req)
	if err != nil {
		return "", err
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panic: %v", r)
		}
		g.recorder.ObserveAgentCall(time.Since(start), err == nil)
	}()
	return g.agent.Generate(ctx, prompt)
}
