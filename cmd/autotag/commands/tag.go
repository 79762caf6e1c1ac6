package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
	"git.home.luguber.info/inful/autotag/internal/gitscope"
	"git.home.luguber.info/inful/autotag/internal/metrics"
	"git.home.luguber.info/inful/autotag/internal/pipeline"
)

// TagCmd implements the 'tag' command.
type TagCmd struct {
	Path        string `arg:"" optional:"" help:"Content root (default: content.root)"`
	DryRun      bool   `name:"dry-run" help:"Report changes without writing files"`
	ChangedOnly bool   `name:"changed-only" help:"Only process files changed in the git working tree"`
	Format      string `enum:"text,json" default:"text" help:"Report format (text|json)"`

	RunFlags `embed:""`
}

func (t *TagCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := t.apply(cfg); err != nil {
		return err
	}

	rt, err := newRuntime(ctx, cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer rt.Close()

	contentDir := contentRoot(t.Path, cfg)
	var opts []pipeline.Option
	if t.ChangedOnly {
		changed, err := gitscope.ChangedFiles(contentDir)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithScope(changed))
	}

	report, err := rt.pipeline(cfg, t.DryRun, opts...).Run(ctx, contentDir)
	if err != nil {
		return err
	}
	report.CacheEntries = rt.cacheEntries(ctx)
	if err := writeReport(g.out(), report, t.Format); err != nil {
		return err
	}
	if n := report.Counts()[pipeline.StatusFailed]; n > 0 {
		return ferrors.FileSystemError(fmt.Sprintf("%d file(s) could not be tagged", n)).
			WithContext("run_id", report.RunID).
			Build()
	}
	return nil
}

func writeReport(w io.Writer, report *pipeline.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, f := range report.Files {
		switch f.Status {
		case pipeline.StatusTagged:
			verb := "tagged"
			if report.DryRun {
				verb = "would tag"
			}
			fmt.Fprintf(w, "%s %s: %s\n", verb, f.Path, strings.Join(f.After, ", "))
		case pipeline.StatusFailed:
			fmt.Fprintf(w, "failed %s: %s\n", f.Path, f.Error)
		}
	}
	c := report.Counts()
	_, err := fmt.Fprintf(w, "%d tagged, %d unchanged, %d skipped (tags present), %d not applicable, %d failed in %s\n",
		c[pipeline.StatusTagged], c[pipeline.StatusUnchanged], c[pipeline.StatusSkippedPresent],
		c[pipeline.StatusNotApplicable], c[pipeline.StatusFailed], report.Duration().Round(time.Millisecond))
	if err == nil && report.CacheEntries != nil {
		_, err = fmt.Fprintf(w, "%d cached response(s)\n", *report.CacheEntries)
	}
	return err
}
