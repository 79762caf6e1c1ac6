// Package tags generates article tags with a text-generation agent.
//
// Generator.Generate never fails: every error path (non-production build,
// agent failure, unparseable output) degrades to the author's existing tags.
// The response parser is split into ParseStrict and SplitFallback so each
// stage can be used and tested on its own; Merge performs the
// case-insensitive, order-preserving union.
package tags
