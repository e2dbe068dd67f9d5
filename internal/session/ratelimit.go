package session

import "time"

// loginRateLimiter is a fixed-window attempt counter: at most max
// attempts within window, the window anchored at the first attempt of
// the current burst. Not safe for concurrent use; the coordinator holds
// its lock while calling allow.
type loginRateLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	attempts    int
	windowStart time.Time
}

// allow records an attempt. It returns false when the attempt exceeds
// the limit inside the active window; rejected attempts do not extend
// the window.
func (rl *loginRateLimiter) allow() bool {
	now := rl.now()

	if rl.attempts > 0 && now.Sub(rl.windowStart) >= rl.window {
		rl.attempts = 0
	}
	if rl.attempts >= rl.max {
		return false
	}
	if rl.attempts == 0 {
		rl.windowStart = now
	}
	rl.attempts++
	return true
}
