package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/autotag/internal/metrics"
	"git.home.luguber.info/inful/autotag/internal/pipeline"
	"git.home.luguber.info/inful/autotag/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Path   string `arg:"" optional:"" help:"Content root (default: content.root)"`
	Listen string `help:"Address for /metrics and /healthz (overrides metrics.listen)"`

	RunFlags `embed:""`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := w.apply(cfg); err != nil {
		return err
	}
	if w.Listen != "" {
		cfg.Metrics.Listen = w.Listen
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	rt, err := newRuntime(ctx, cfg, recorder)
	if err != nil {
		return err
	}
	defer rt.Close()

	contentDir := contentRoot(w.Path, cfg)
	var p *pipeline.Pipeline
	watcher := watch.New(watch.Config{
		Root:           contentDir,
		Debounce:       cfg.Watch.Debounce,
		RescanInterval: cfg.Watch.RescanInterval,
		SuppressWindow: cfg.Watch.SuppressWindow,
		MetricsListen:  cfg.Metrics.Listen,
		Registry:       reg,
	}, func(ctx context.Context) error {
		_, err := p.Run(ctx, contentDir)
		return err
	})
	p = rt.pipeline(cfg, false, pipeline.WithRecorder(recorder), pipeline.WithWriteHook(watcher.Suppress))

	return watcher.Run(ctx)
}
