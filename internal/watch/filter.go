package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// shouldIgnoreEvent reports filesystem events that must not trigger a run.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	// Editor temp and swap files.
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	return base == "Thumbs.db" || base == "node_modules"
}

// suppressor remembers recently self-written files.
type suppressor struct {
	mu     sync.Mutex
	window time.Duration
	until  map[string]time.Time
	now    func() time.Time
}

func newSuppressor(window time.Duration) *suppressor {
	return &suppressor{window: window, until: map[string]time.Time{}, now: time.Now}
}

// mark suppresses events for path for the configured window.
func (s *suppressor) mark(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.until[filepath.Clean(path)] = s.now().Add(s.window)
}

// suppressed reports whether an event for path falls inside its window.
// Expired entries are dropped.
func (s *suppressor) suppressed(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	path = filepath.Clean(path)
	deadline, ok := s.until[path]
	if !ok {
		return false
	}
	if s.now().After(deadline) {
		delete(s.until, path)
		return false
	}
	return true
}
