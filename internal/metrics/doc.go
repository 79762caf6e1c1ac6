// Package metrics records tagging activity.
//
// Components receive a Recorder and default to NoopRecorder, so metrics cost
// nothing unless a PrometheusRecorder is injected (the watch command does this
// when metrics.listen is configured).
package metrics
