// Package pipeline runs the tag generator over a content tree.
//
// A run discovers markdown files, keeps those under a content-type
// directory, parses their front matter, asks the generator for tags and
// writes the result back into the front matter. Per-file problems are
// reported in the Report and never abort the run.
package pipeline
