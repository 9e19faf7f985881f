package ratelimit

import "time"

// Limiter applies a Table of per-route rules over a Store.
type Limiter struct {
	store Store
	table Table
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock substitutes the time source. Tests use this to step through
// windows deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter validates the table and builds a limiter over the given store.
func NewLimiter(store Store, table Table, opts ...Option) (*Limiter, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	l := &Limiter{store: store, table: table, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check counts one request from identifier against the rule for path and
// decides whether it is allowed. The Nth request in a window with N <= max
// is allowed; the first request past the quota is denied with a retry hint
// derived from the window reset.
func (l *Limiter) Check(identifier, path string) Decision {
	rule := l.table.Resolve(path)
	now := l.now()

	rec := l.store.Increment(identifier+"|"+path, rule.Window, now)

	if rec.Count > rule.MaxRequests {
		return Decision{
			Allowed:    false,
			Limit:      rule.MaxRequests,
			Remaining:  0,
			ResetAt:    rec.ResetAt,
			RetryAfter: rec.ResetAt.Sub(now),
			Message:    rule.Message,
		}
	}

	return Decision{
		Allowed:   true,
		Limit:     rule.MaxRequests,
		Remaining: rule.MaxRequests - rec.Count,
		ResetAt:   rec.ResetAt,
	}
}
