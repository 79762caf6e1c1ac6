// Package watch re-runs tagging whenever the content tree changes.
//
// Filesystem events are debounced, runs never overlap and at most one run
// is queued behind the active one. Files rewritten by the tagging run itself
// are suppressed for a short window so a run does not trigger the next.
package watch
