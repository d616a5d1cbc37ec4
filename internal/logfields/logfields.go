package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPath       = "path"
	KeySource     = "source"
	KeyOutput     = "output"
	KeyPartials   = "partials"
	KeyFiles      = "files"
	KeyDurationMS = "duration_ms"
	KeyCommit     = "commit"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Source(dir string) slog.Attr     { return slog.String(KeySource, dir) }
func Output(dir string) slog.Attr     { return slog.String(KeyOutput, dir) }
func Partials(dir string) slog.Attr   { return slog.String(KeyPartials, dir) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Commit(hash string) slog.Attr    { return slog.String(KeyCommit, hash) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
