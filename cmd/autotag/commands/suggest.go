package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/autotag/internal/metrics"
)

// SuggestCmd implements the 'suggest' command.
type SuggestCmd struct {
	File   string `arg:"" type:"existingfile" help:"Markdown file to inspect"`
	Format string `enum:"text,json" default:"text" help:"Output format (text|json)"`

	RunFlags `embed:""`
}

func (s *SuggestCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := s.apply(cfg); err != nil {
		return err
	}
	rt, err := newRuntime(ctx, cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.pipeline(cfg, true).Suggest(ctx, s.File)
	if err != nil {
		return err
	}

	out := g.out()
	if s.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	for _, tag := range res.After {
		if _, err := fmt.Fprintln(out, tag); err != nil {
			return err
		}
	}
	return nil
}
