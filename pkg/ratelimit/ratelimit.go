// Package ratelimit implements a fixed-window request counter keyed by
// (client identifier, route). The counter state lives behind the Store
// interface so tests can drive a deterministic clock and a multi-instance
// deployment can substitute a shared external store without touching the
// decision logic.
package ratelimit

import (
	"fmt"
	"time"
)

// Record is the counter state for one (identifier, route) key within the
// current window.
type Record struct {
	Count   int
	ResetAt time.Time
}

// Store holds fixed-window counters. Implementations must be safe for
// concurrent use; Increment in particular must be atomic so overlapping
// requests cannot lose updates and slip past the quota.
type Store interface {
	// Increment bumps the counter for key, starting a fresh window with
	// count=1 when no record exists or the existing window has elapsed.
	// It returns the record after the bump.
	Increment(key string, window time.Duration, now time.Time) Record

	// Get returns the current record without mutating it. An expired record
	// reports ok=false; callers treat that the same as absent.
	Get(key string, now time.Time) (rec Record, ok bool)

	// Evict drops records whose window ended before now and returns how many
	// were removed. Housekeeping only: an expired record left in place is
	// replaced on its next Increment anyway.
	Evict(now time.Time) int
}

// Rule is the per-route rate-limit policy.
type Rule struct {
	Window      time.Duration
	MaxRequests int
	// Message is returned to clients on denial.
	Message string
}

// Validate checks that the rule is usable.
func (r Rule) Validate() error {
	if r.Window <= 0 {
		return fmt.Errorf("ratelimit: window must be positive, got %v", r.Window)
	}
	if r.MaxRequests <= 0 {
		return fmt.Errorf("ratelimit: max requests must be positive, got %d", r.MaxRequests)
	}
	return nil
}

// Table maps exact request paths to rules. Resolution is exact pathname
// match with a mandatory default; prefix matching would silently change
// which rule a route falls under, so it is deliberately not supported.
type Table struct {
	Rules   map[string]Rule
	Default Rule
}

// Validate checks the default rule and every route entry.
func (t Table) Validate() error {
	if err := t.Default.Validate(); err != nil {
		return fmt.Errorf("ratelimit: default rule: %w", err)
	}
	for path, rule := range t.Rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("ratelimit: rule for %q: %w", path, err)
		}
	}
	return nil
}

// Resolve returns the rule for path, falling back to the default entry.
func (t Table) Resolve(path string) Rule {
	if rule, ok := t.Rules[path]; ok {
		return rule
	}
	return t.Default
}

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is how long a denied client should back off. Zero when
	// allowed.
	RetryAfter time.Duration
	// Message is the rule's denial message. Empty when allowed.
	Message string
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds for the
// Retry-After header. Always at least 1 on a denial.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
