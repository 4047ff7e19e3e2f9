package alert

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// History tracks the last-sent time per alert type for rate limiting. It is
// mutated only by the Dispatcher; the decision policy reads it through Allow.
// Entries expire after the configured minimum interval, so an absent entry
// means the type may be sent again.
type History struct {
	window time.Duration
	cache  *gocache.Cache
}

// NewHistory creates an empty history with the given rate-limit window.
// Each caller owns an independent history, there is no process-wide state.
func NewHistory(window time.Duration) *History {
	cleanup := window
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &History{
		window: window,
		cache:  gocache.New(window, cleanup),
	}
}

// Allow reports whether an alert of the given type is currently outside its
// rate-limit window.
func (h *History) Allow(t Type) bool {
	if h.window <= 0 {
		return true
	}
	_, found := h.cache.Get(string(t))
	return !found
}

// MarkSent records a successful dispatch of the given type. The entry
// expires after the rate-limit window.
func (h *History) MarkSent(t Type, sentAt time.Time) {
	if h.window <= 0 {
		return
	}
	h.cache.Set(string(t), sentAt, h.window)
}

// LastSent returns the recorded send time for the type within the current
// window, or a zero time if none.
func (h *History) LastSent(t Type) (time.Time, bool) {
	v, found := h.cache.Get(string(t))
	if !found {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

// Window returns the configured rate-limit window.
func (h *History) Window() time.Duration {
	return h.window
}
