package entities

import "time"

// RateWindow is a fixed-length counting interval anchored at the first
// accepted request rather than at calendar boundaries.
type RateWindow struct {
	Count       int
	WindowStart time.Time
}

// Active reports whether the window is still open at now.
func (w *RateWindow) Active(now time.Time, length time.Duration) bool {
	return w != nil && now.Sub(w.WindowStart) < length
}

// Admit decides whether one more request fits in the window.
//
// A rejected request leaves the window exactly as it was: the caller must not
// write anything back. An accepted request either extends a live window or
// opens a fresh one at now. w may be nil when no window is stored.
func (w *RateWindow) Admit(now time.Time, limit int, length time.Duration) (RateWindow, bool) {
	if w.Active(now, length) {
		if w.Count >= limit {
			return *w, false
		}
		return RateWindow{Count: w.Count + 1, WindowStart: w.WindowStart}, true
	}
	return RateWindow{Count: 1, WindowStart: now}, true
}
