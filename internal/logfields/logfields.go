package logfields

import (
	"log/slog"
	"strings"
)

// Canonical log field names shared by all packages.
const (
	KeyRunID      = "run_id"
	KeyPath       = "path"
	KeyOutcome    = "outcome"
	KeyStatus     = "status"
	KeyModel      = "model"
	KeyProvider   = "provider"
	KeyTags       = "tags"
	KeyTagCount   = "tag_count"
	KeyDurationMS = "duration_ms"
	KeyCategory   = "category"
	KeyError      = "error"
)

func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Outcome(o string) slog.Attr        { return slog.String(KeyOutcome, o) }
func Status(s string) slog.Attr         { return slog.String(KeyStatus, s) }
func Model(m string) slog.Attr          { return slog.String(KeyModel, m) }
func Provider(p string) slog.Attr       { return slog.String(KeyProvider, p) }
func TagCount(n int) slog.Attr          { return slog.Int(KeyTagCount, n) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Category(c string) slog.Attr       { return slog.String(KeyCategory, c) }

// Tags renders a tag list as a single comma-joined value.
func Tags(tags []string) slog.Attr { return slog.String(KeyTags, strings.Join(tags, ",")) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
