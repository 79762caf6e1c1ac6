package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/autotag/internal/events"
	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
	"git.home.luguber.info/inful/autotag/internal/frontmatter"
	"git.home.luguber.info/inful/autotag/internal/logfields"
	"git.home.luguber.info/inful/autotag/internal/markdown"
	"git.home.luguber.info/inful/autotag/internal/metrics"
	"git.home.luguber.info/inful/autotag/internal/tags"
)

// Tagger is the generator contract the pipeline depends on.
type Tagger interface {
	Run(ctx context.Context, req tags.Request) tags.Result
}

// Scope limits a run to a subset of files, keyed by absolute path.
type Scope interface {
	Includes(path string) bool
}

// Config holds the run settings.
type Config struct {
	ContentDirs  []string
	Policy       Policy
	Timeout      time.Duration // per generator call; 0 disables
	Concurrency  int
	HeadingTitle bool // use the first level-1 heading when title is absent
	DryRun       bool
}

// Pipeline tags content files.
type Pipeline struct {
	tagger     Tagger
	cfg        Config
	classifier Classifier
	scope      Scope
	publisher  events.Publisher
	recorder   metrics.Recorder
	onWrite    func(path string)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithScope(s Scope) Option {
	return func(p *Pipeline) { p.scope = s }
}

func WithPublisher(pub events.Publisher) Option {
	return func(p *Pipeline) {
		if pub != nil {
			p.publisher = pub
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = metrics.OrNoop(r) }
}

// WithWriteHook registers fn to be called right before a file is rewritten.
func WithWriteHook(fn func(path string)) Option {
	return func(p *Pipeline) { p.onWrite = fn }
}

// New creates a Pipeline. Zero values in cfg take their defaults.
func New(tagger Tagger, cfg Config, opts ...Option) *Pipeline {
	if cfg.Policy == "" {
		cfg.Policy = PolicySkipIfPresent
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	p := &Pipeline{
		tagger:     tagger,
		cfg:        cfg,
		classifier: NewClassifier(cfg.ContentDirs),
		publisher:  events.NoopPublisher{},
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every content file under root. The returned error is
// non-nil only when root cannot be walked or ctx is canceled; file level
// failures are recorded in the report.
func (p *Pipeline) Run(ctx context.Context, root string) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Root:    root,
		DryRun:  p.cfg.DryRun,
		Started: time.Now(),
	}
	log := slog.With(logfields.RunID(report.RunID))

	files, err := Discover(root)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to scan content root").
			WithCause(err).
			WithContext("root", root).
			Build()
	}
	if p.scope != nil {
		files = slices.DeleteFunc(files, func(f string) bool { return !p.scope.Includes(f) })
	}
	log.Info("Tagging run started", slog.String("root", root), slog.Int("files", len(files)),
		slog.String("policy", string(p.cfg.Policy)), slog.Bool("dry_run", p.cfg.DryRun))

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = FileResult{Path: path, Status: StatusFailed, Error: gctx.Err().Error()}
				return nil
			}
			results[i] = p.processFile(gctx, log, root, path, report.RunID)
			return nil
		})
	}
	_ = g.Wait()

	report.Files = results
	report.Finished = time.Now()
	p.recorder.ObserveRunDuration(report.Duration())

	counts := report.Counts()
	log.Info("Tagging run finished",
		slog.Int("tagged", counts[StatusTagged]),
		slog.Int("unchanged", counts[StatusUnchanged]),
		slog.Int("skipped_present", counts[StatusSkippedPresent]),
		slog.Int("failed", counts[StatusFailed]),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))

	if err := ctx.Err(); err != nil {
		return report, ferrors.WrapError(err, ferrors.CategoryRuntime, "tagging run canceled").Build()
	}
	return report, nil
}

// Suggest returns the generator result for a single file without writing.
func (p *Pipeline) Suggest(ctx context.Context, path string) (FileResult, error) {
	doc, err := p.load(path)
	if err != nil {
		return FileResult{Path: path, Status: StatusFailed, Error: err.Error()}, err
	}
	existing := doc.Tags()
	res := p.generate(ctx, doc, existing)
	fr := FileResult{Path: path, Outcome: res.Outcome, Before: existing, After: res.Tags, Status: StatusUnchanged}
	if changed(existing, res.Tags) {
		fr.Status = StatusTagged
	}
	return fr, nil
}

func (p *Pipeline) processFile(ctx context.Context, log *slog.Logger, root, path, runID string) FileResult {
	fr := p.tagFile(ctx, log, root, path)
	p.recorder.IncFileStatus(string(fr.Status))

	if fr.Status == StatusTagged && !p.cfg.DryRun {
		ev := events.TagEvent{
			RunID:   runID,
			Path:    fr.Path,
			Status:  string(fr.Status),
			Outcome: string(fr.Outcome),
			Tags:    fr.After,
		}
		if err := p.publisher.Publish(ctx, ev); err != nil {
			log.Warn("Failed to publish tag event", logfields.Path(path), logfields.Error(err))
		}
	}
	return fr
}

func (p *Pipeline) tagFile(ctx context.Context, log *slog.Logger, root, path string) FileResult {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	fr := FileResult{Path: filepath.ToSlash(rel)}
	log = log.With(logfields.Path(fr.Path))

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Join(root, rel)
	}
	if !p.classifier.Applies(abs) {
		log.Debug("File outside content-type directories; skipping")
		fr.Status = StatusNotApplicable
		return fr
	}

	doc, err := p.load(path)
	if err != nil {
		log.Error("Failed to read content file", logfields.Error(err))
		fr.Status = StatusFailed
		fr.Error = err.Error()
		return fr
	}

	existing := doc.Tags()
	fr.Before = existing
	if p.cfg.Policy == PolicySkipIfPresent && len(existing) > 0 {
		log.Debug("File already has tags; skipping", logfields.TagCount(len(existing)))
		fr.Status = StatusSkippedPresent
		return fr
	}

	res := p.generate(ctx, doc, existing)
	fr.Outcome = res.Outcome
	fr.After = res.Tags
	if !changed(existing, res.Tags) {
		log.Debug("Tags unchanged", logfields.Outcome(string(res.Outcome)))
		fr.Status = StatusUnchanged
		return fr
	}

	fr.Status = StatusTagged
	if p.cfg.DryRun {
		log.Info("Would tag file", logfields.Tags(res.Tags), logfields.Outcome(string(res.Outcome)))
		return fr
	}

	doc.SetTags(res.Tags)
	if err := p.write(path, doc); err != nil {
		log.Error("Failed to write tags", logfields.Error(err))
		fr.Status = StatusFailed
		fr.Error = err.Error()
		return fr
	}
	log.Info("Tagged file", logfields.Tags(res.Tags), logfields.Outcome(string(res.Outcome)))
	return fr
}

func (p *Pipeline) load(path string) (*frontmatter.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to read file").WithCause(err).WithContext("path", path).Build()
	}
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return nil, ferrors.FrontmatterError("invalid front matter").WithCause(err).WithContext("path", path).Build()
	}
	return doc, nil
}

func (p *Pipeline) generate(ctx context.Context, doc *frontmatter.Document, existing []string) tags.Result {
	title := doc.Title()
	if title == "" && p.cfg.HeadingTitle {
		title = markdown.FirstHeading(doc.Body())
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	return p.tagger.Run(ctx, tags.Request{
		Title:        title,
		Content:      string(doc.Body()),
		ExistingTags: existing,
	})
}

func (p *Pipeline) write(path string, doc *frontmatter.Document) error {
	out, err := doc.Bytes()
	if err != nil {
		return ferrors.FrontmatterError("failed to encode front matter").WithCause(err).WithContext("path", path).Build()
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if p.onWrite != nil {
		p.onWrite(path)
	}
	if err := os.WriteFile(path, out, mode); err != nil {
		return ferrors.FileSystemError("failed to write file").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}

// changed reports whether next should be written over current.
func changed(current, next []string) bool {
	return len(next) > 0 && !slices.Equal(current, next)
}
