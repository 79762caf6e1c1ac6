package tagcache

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/autotag/internal/logfields"
	"git.home.luguber.info/inful/autotag/internal/metrics"
)

// Agent matches the text-generation agent interface.
type Agent interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CachedAgent answers from the Store when it has seen a prompt before and
// stores successful responses of the wrapped agent. Store failures are
// logged and never fail a call.
type CachedAgent struct {
	inner       Agent
	store       *Store
	model       string
	instruction string
	recorder    metrics.Recorder
}

// Wrap returns inner backed by store. model and instruction are part of the
// cache key so changing either invalidates old entries.
func Wrap(inner Agent, store *Store, model, instruction string, recorder metrics.Recorder) *CachedAgent {
	return &CachedAgent{
		inner:       inner,
		store:       store,
		model:       model,
		instruction: instruction,
		recorder:    metrics.OrNoop(recorder),
	}
}

func (c *CachedAgent) Generate(ctx context.Context, prompt string) (string, error) {
	key := Fingerprint(c.model, c.instruction, prompt)

	cached, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("Tag cache lookup failed", logfields.Error(err))
	}
	c.recorder.IncCacheLookup(ok)
	if ok {
		slog.Debug("Tag cache hit", slog.String("fingerprint", key))
		return cached, nil
	}

	response, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.store.Put(ctx, key, c.model, response); err != nil {
		slog.Warn("Tag cache write failed", logfields.Error(err))
	}
	return response, nil
}
