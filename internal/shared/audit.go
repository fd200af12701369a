package shared

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AuditLog represents a single recorded action.
type AuditLog struct {
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditTrail keeps a bounded in-memory history of actions and mirrors each
// record to the structured log. The movement log is the authoritative audit
// surface for stock changes; this trail covers catalog and lifecycle actions.
type AuditTrail struct {
	mu      sync.Mutex
	logger  *slog.Logger
	entries []AuditLog
	limit   int
}

// NewAuditTrail returns a trail bounded to limit entries.
func NewAuditTrail(logger *slog.Logger, limit int) *AuditTrail {
	if limit <= 0 {
		limit = 1000
	}
	return &AuditTrail{logger: logger, limit: limit}
}

// Record appends the log entry.
func (t *AuditTrail) Record(_ context.Context, log AuditLog) error {
	if t == nil {
		return nil
	}
	if log.At.IsZero() {
		log.At = time.Now().UTC()
	}
	t.mu.Lock()
	t.entries = append(t.entries, log)
	if len(t.entries) > t.limit {
		t.entries = t.entries[len(t.entries)-t.limit:]
	}
	t.mu.Unlock()
	if t.logger != nil {
		t.logger.Info("audit",
			slog.String("actor", log.Actor),
			slog.String("action", log.Action),
			slog.String("entity", log.Entity),
			slog.String("entity_id", log.EntityID))
	}
	return nil
}

// Recent returns up to n most recent entries, newest first.
func (t *AuditTrail) Recent(n int) []AuditLog {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n <= 0 || n > len(t.entries) {
		n = len(t.entries)
	}
	out := make([]AuditLog, 0, n)
	for i := len(t.entries) - 1; i >= len(t.entries)-n; i-- {
		out = append(out, t.entries[i])
	}
	return out
}
