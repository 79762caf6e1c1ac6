package metrics

import "time"

// Recorder defines observability hooks for tag generation and pipeline runs.
type Recorder interface {
	// ObserveAgentCall records one text-generation call and whether it succeeded.
	ObserveAgentCall(d time.Duration, success bool)
	// IncOutcome counts generator outcomes (skipped, generated, fallback).
	IncOutcome(outcome string)
	// IncFileStatus counts per-file pipeline results (tagged, unchanged, ...).
	IncFileStatus(status string)
	// IncCacheLookup counts response cache hits and misses.
	IncCacheLookup(hit bool)
	ObserveRunDuration(d time.Duration)
}

// NoopRecorder is the default Recorder.
type NoopRecorder struct{}

func (NoopRecorder) ObserveAgentCall(time.Duration, bool) {}
func (NoopRecorder) IncOutcome(string)                    {}
func (NoopRecorder) IncFileStatus(string)                 {}
func (NoopRecorder) IncCacheLookup(bool)                  {}
func (NoopRecorder) ObserveRunDuration(time.Duration)     {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
