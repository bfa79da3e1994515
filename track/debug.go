package track

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// maxDebugBytes caps how much of a rendered document the debug sink keeps.
// Retailer pages routinely exceed a megabyte; the head is where the signals
// live.
const maxDebugBytes = 200000

// DebugSink receives the rendered document of every successfully fetched
// store, for offline inspection of extraction misses.
type DebugSink interface {
	WriteDocument(store, html string)
}

// FileSink writes documents under Dir, one file per store. Write failures
// are logged and swallowed: the debug channel must never affect a run.
type FileSink struct {
	Dir string
}

func (s *FileSink) WriteDocument(store, html string) {
	if len(html) > maxDebugBytes {
		html = html[:maxDebugBytes]
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		slog.Warn("debug sink unavailable", "dir", s.Dir, "error", err)
		return
	}
	path := filepath.Join(s.Dir, sanitizeName(store)+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		slog.Warn("debug document not written", "path", path, "error", err)
	}
}

// sanitizeName flattens a store name into a safe file stem.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
