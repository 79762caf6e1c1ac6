package pipeline

import (
	"time"

	"git.home.luguber.info/inful/autotag/internal/tags"
)

// Status is the per-file result of a run.
type Status string

const (
	StatusTagged         Status = "tagged"          // tags changed (written unless dry run)
	StatusUnchanged      Status = "unchanged"       // result empty or equal to the current tags
	StatusSkippedPresent Status = "skipped_present" // author tags present under skip_if_present
	StatusNotApplicable  Status = "not_applicable"  // outside the content-type directories
	StatusFailed         Status = "failed"          // IO or front matter error
)

// FileResult records what happened to one file.
type FileResult struct {
	Path    string       `json:"path"`
	Status  Status       `json:"status"`
	Outcome tags.Outcome `json:"outcome,omitempty"`
	Before  []string     `json:"before,omitempty"`
	After   []string     `json:"after,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Report summarizes a run.
type Report struct {
	RunID    string       `json:"run_id"`
	Root     string       `json:"root"`
	DryRun   bool         `json:"dry_run"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Files    []FileResult `json:"files"`
	// CacheEntries is the size of the response cache after the run, when
	// one is configured.
	CacheEntries *int `json:"cache_entries,omitempty"`
}

// Counts returns the number of files per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, f := range r.Files {
		counts[f.Status]++
	}
	return counts
}

func (r *Report) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Failed reports whether any file failed.
func (r *Report) Failed() bool { return r.Counts()[StatusFailed] > 0 }
