// Package sessiontimer tracks elapsed interview time against an optional
// limit. The clock is injected so expiry behavior is testable without
// sleeping.
package sessiontimer

import (
	"context"
	"sync"
	"time"
)

const defaultWarnBefore = 2 * time.Minute

// Snapshot is a point-in-time view of the tracker.
type Snapshot struct {
	Elapsed   time.Duration `json:"elapsed"`
	Limit     time.Duration `json:"limit"`
	Remaining time.Duration `json:"remaining"`
	Warned    bool          `json:"warned"`
	Expired   bool          `json:"expired"`
}

type Config struct {
	// Limit of zero means an untimed session.
	Limit time.Duration
	// WarnBefore is how much remaining time triggers the warning.
	WarnBefore time.Duration
	Now        func() time.Time

	OnTick    func(Snapshot)
	OnWarning func(Snapshot)
	OnExpired func(Snapshot)
}

// Tracker counts up from its creation instant. The warning fires once per
// session and expiry latches: raising the limit afterwards does not
// un-expire a session.
type Tracker struct {
	mu sync.Mutex

	now   func() time.Time
	start time.Time
	limit time.Duration
	warn  time.Duration

	warned  bool
	expired bool
	stopped bool

	onTick    func(Snapshot)
	onWarning func(Snapshot)
	onExpired func(Snapshot)
}

func New(cfg Config) *Tracker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.WarnBefore <= 0 {
		cfg.WarnBefore = defaultWarnBefore
	}
	return &Tracker{
		now:       cfg.Now,
		start:     cfg.Now(),
		limit:     cfg.Limit,
		warn:      cfg.WarnBefore,
		onTick:    cfg.OnTick,
		onWarning: cfg.OnWarning,
		onExpired: cfg.OnExpired,
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	s := Snapshot{
		Elapsed: t.now().Sub(t.start),
		Limit:   t.limit,
		Warned:  t.warned,
		Expired: t.expired,
	}
	if t.limit > 0 {
		s.Remaining = t.limit - s.Elapsed
		if s.Remaining < 0 {
			s.Remaining = 0
		}
	}
	return s
}

// SetLimit changes the limit mid-session. A limit at or below the elapsed
// time expires on the next tick. The warning and expiry latches stay
// raised; each fires at most once per session.
func (t *Tracker) SetLimit(limit time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limit = limit
}

// Stop freezes the tracker; further ticks are no-ops.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Tick evaluates the deadline and fires any due callbacks. Callbacks run
// without the tracker lock held.
func (t *Tracker) Tick() Snapshot {
	t.mu.Lock()
	if t.stopped {
		s := t.snapshotLocked()
		t.mu.Unlock()
		return s
	}

	var fireWarn, fireExpire bool
	s := t.snapshotLocked()
	if t.limit > 0 && !t.expired {
		if s.Elapsed >= t.limit {
			t.expired = true
			fireExpire = true
		} else if !t.warned && s.Remaining <= t.warn {
			t.warned = true
			fireWarn = true
		}
	}
	s.Warned = t.warned
	s.Expired = t.expired
	onTick, onWarn, onExpire := t.onTick, t.onWarning, t.onExpired
	t.mu.Unlock()

	if fireWarn && onWarn != nil {
		onWarn(s)
	}
	if fireExpire && onExpire != nil {
		onExpire(s)
	}
	if onTick != nil {
		onTick(s)
	}
	return s
}

// Run ticks once per interval until the context is canceled or the
// session expires.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := t.Tick()
			if s.Expired {
				return
			}
			t.mu.Lock()
			stopped := t.stopped
			t.mu.Unlock()
			if stopped {
				return
			}
		}
	}
}
