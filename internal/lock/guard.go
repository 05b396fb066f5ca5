package lock

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// WakeGuard is the stay-awake boundary. Acquire is renewed, not stacked:
// re-acquiring while held extends the bound instead of adding a second hold.
// Release must be safe when nothing is held, so every teardown path can call
// it unconditionally.
type WakeGuard interface {
	// Acquire holds the guarantee for at most the given duration.
	Acquire(timeout time.Duration)

	// Release drops the guarantee. No-op when not held.
	Release()
}

// NoopGuard is a WakeGuard that does nothing. The process model on a
// workstation has no doze to fight; the guard boundary exists so the session
// protocol exercises the same acquire/release discipline the mobile original
// needs.
type NoopGuard struct{}

// Acquire implements WakeGuard.
func (NoopGuard) Acquire(time.Duration) {}

// Release implements WakeGuard.
func (NoopGuard) Release() {}

// Ensure NoopGuard implements WakeGuard.
var _ WakeGuard = NoopGuard{}

// TimedGuard tracks a held/renewed guarantee with an automatic expiry timer,
// logging acquire, renew, release, and timeout. It is the default guard so
// a session abort that skips Release still ends bounded.
type TimedGuard struct {
	mu    sync.Mutex
	timer *time.Timer
	held  bool
	log   zerolog.Logger
}

// NewTimedGuard creates a TimedGuard.
func NewTimedGuard(log zerolog.Logger) *TimedGuard {
	return &TimedGuard{log: log.With().Str("component", "wake_guard").Logger()}
}

// Acquire implements WakeGuard. A second Acquire while held renews the
// expiry rather than stacking a second hold.
func (g *TimedGuard) Acquire(timeout time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timer != nil {
		g.timer.Stop()
	}
	renewed := g.held
	g.held = true
	g.timer = time.AfterFunc(timeout, g.expire)

	g.log.Debug().Bool("renewed", renewed).Dur("timeout", timeout).Msg("wake guard acquired")
}

// Release implements WakeGuard. No-op when not held.
func (g *TimedGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held {
		return
	}
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.held = false
	g.log.Debug().Msg("wake guard released")
}

// Held reports whether the guarantee is currently held.
func (g *TimedGuard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

// expire drops the hold when the bound elapses without an explicit Release.
func (g *TimedGuard) expire() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held {
		return
	}
	g.held = false
	g.timer = nil
	g.log.Warn().Msg("wake guard expired without release")
}

// Ensure TimedGuard implements WakeGuard.
var _ WakeGuard = (*TimedGuard)(nil)
