package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/autotag/internal/logfields"
	"git.home.luguber.info/inful/autotag/internal/metrics"
	"git.home.luguber.info/inful/autotag/internal/version"
)

// RunFunc performs one tagging run.
type RunFunc func(ctx context.Context) error

// Config configures a Watcher.
type Config struct {
	Root           string
	Debounce       time.Duration // default 300ms
	RescanInterval time.Duration // 0 disables periodic rescans
	SuppressWindow time.Duration // default 2s
	MetricsListen  string        // "" disables the HTTP server
	Registry       *prom.Registry
}

// Watcher drives RunFunc from filesystem events and a rescan schedule.
type Watcher struct {
	cfg      Config
	run      RunFunc
	suppress *suppressor
	requests chan struct{}

	debounceMu sync.Mutex
	timer      *time.Timer

	statusMu  sync.RWMutex
	started   time.Time
	lastRun   time.Time
	lastErr   error
	runsTotal int
}

// New creates a Watcher for cfg.Root.
func New(cfg Config, run RunFunc) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	if cfg.SuppressWindow <= 0 {
		cfg.SuppressWindow = 2 * time.Second
	}
	return &Watcher{
		cfg:      cfg,
		run:      run,
		suppress: newSuppressor(cfg.SuppressWindow),
		requests: make(chan struct{}, 1),
	}
}

// Suppress ignores filesystem events for path for the suppression window.
// Pass it to the pipeline as its write hook.
func (w *Watcher) Suppress(path string) { w.suppress.mark(path) }

// Run performs an initial run and then watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()
	if err := addDirsRecursive(fsw, w.cfg.Root); err != nil {
		return err
	}

	w.statusMu.Lock()
	w.started = time.Now()
	w.statusMu.Unlock()

	if w.cfg.RescanInterval > 0 {
		scheduler, err := w.startScheduler()
		if err != nil {
			return err
		}
		defer func() { _ = scheduler.Shutdown() }()
	}

	var srv *http.Server
	if w.cfg.MetricsListen != "" {
		srv = &http.Server{Addr: w.cfg.MetricsListen, Handler: w.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("Serving metrics", slog.String("addr", w.cfg.MetricsListen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()

	w.request()
	slog.Info("Watching for content changes", slog.String("root", w.cfg.Root))

	err = w.loop(ctx, fsw)

	w.debounceMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.debounceMu.Unlock()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown error", logfields.Error(err))
		}
		cancel()
	}
	wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("Watcher stopping")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fsw, ev.Name)
		}
	}
	if w.suppress.suppressed(ev.Name) {
		slog.Debug("Ignoring self-written file", logfields.Path(ev.Name))
		return
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

// trigger schedules a run after the debounce delay, restarting the delay on
// every call.
func (w *Watcher) trigger() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, w.request)
}

// request queues a run unless one is already queued.
func (w *Watcher) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// worker executes queued runs one at a time.
func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			err := w.run(ctx)
			if err != nil && ctx.Err() == nil {
				slog.Warn("Tagging run failed", logfields.Error(err))
			}
			w.statusMu.Lock()
			w.lastRun = time.Now()
			w.lastErr = err
			w.runsTotal++
			w.statusMu.Unlock()
		}
	}
}

func (w *Watcher) startScheduler() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.cfg.RescanInterval),
		gocron.NewTask(func() {
			slog.Info("Scheduled rescan")
			w.request()
		}),
		gocron.WithName("rescan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create rescan job: %w", err)
	}
	s.Start()
	return s, nil
}

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Runs      int       `json:"runs"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Handler serves /metrics and /healthz.
func (w *Watcher) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(w.cfg.Registry))
	mux.HandleFunc("/healthz", w.handleHealth)
	return mux
}

func (w *Watcher) handleHealth(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.Header().Set("Allow", http.MethodGet)
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.statusMu.RLock()
	resp := healthResponse{
		Status:  "healthy",
		Version: version.Version,
		Runs:    w.runsTotal,
		LastRun: w.lastRun,
	}
	if !w.started.IsZero() {
		resp.Uptime = time.Since(w.started).Seconds()
	}
	if w.lastErr != nil {
		resp.Status = "degraded"
		resp.LastError = w.lastErr.Error()
	}
	w.statusMu.RUnlock()

	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(resp); err != nil {
		slog.Warn("Failed to write health response", logfields.Error(err))
	}
}

func addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && shouldIgnoreEvent(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			slog.Warn("Watch add failed", slog.String("dir", path), logfields.Error(err))
		}
		return nil
	})
}
