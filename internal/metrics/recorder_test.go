package metrics

import (
	"testing"
	"time"
)

// TestNoopRecorder ensures the no-op implementation is callable without panics.
func TestNoopRecorder(t *testing.T) {
	r := OrNoop(nil)
	r.ObserveAgentCall(time.Second, true)
	r.IncOutcome("generated")
	r.IncFileStatus("tagged")
	r.IncCacheLookup(false)
	r.ObserveRunDuration(time.Second)

	var nilProm *PrometheusRecorder
	nilProm.IncOutcome("generated")
}
