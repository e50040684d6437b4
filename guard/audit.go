package guard

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"
)

// maxErrorBytes caps the error text stored per entry so a large remote
// response body cannot bloat the audit trail.
const maxErrorBytes = 4 * 1024

// Sink receives redacted audit entries for durable storage. The in-memory
// log inside Logger is the source of truth for the current process; sinks
// are best-effort external persistence.
type Sink interface {
	Emit(ctx context.Context, e Entry) error
	Close() error
}

// Logger keeps an append-only, in-process audit log and fans entries out to
// any configured sinks. Entries are redacted once, at write time.
type Logger struct {
	log   *slog.Logger
	sinks []Sink

	mu      sync.Mutex
	entries []Entry
}

func NewLogger(log *slog.Logger, sinks ...Sink) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log, sinks: sinks}
}

// Log appends a redacted copy of the entry. Only the error field is scanned
// for secret shapes; other fields are stored verbatim. Sink failures are
// logged and never propagate to the caller.
func (l *Logger) Log(ctx context.Context, e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	e.Error = RedactTokens(truncateUTF8(e.Error, maxErrorBytes))

	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	for _, s := range l.sinks {
		if err := s.Emit(ctx, e); err != nil {
			l.log.Warn("audit_sink_emit_error", "error", err.Error())
		}
	}
}

// Entries returns a copy of the log; callers cannot mutate internal state.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Close closes all sinks. The in-memory log remains readable.
func (l *Logger) Close() error {
	var first error
	for _, s := range l.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// truncateUTF8 returns the longest prefix of s at most maxBytes bytes long
// that does not split a multi-byte character.
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
