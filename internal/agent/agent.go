// Package agent talks to OpenAI-compatible text-generation services.
package agent

import "context"

// Agent sends one prompt and returns the model's text.
type Agent interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to Agent.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
