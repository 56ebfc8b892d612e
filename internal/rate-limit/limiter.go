package rateLimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter enforces a fixed request allowance per key (usually a client
// IP address) and window. All counts are reset together when a window
// ends.
type Limiter interface {
	// AccessAllowed counts one request for key. If the key has used up
	// its allowance, it returns false and the time until the window
	// ends.
	AccessAllowed(key string) (bool, time.Duration)
}

type clocker interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type schedule struct {
	sync.Mutex
	period time.Duration
	next   time.Time
}

// IsTime reports whether a window boundary has passed, and if so moves to
// the window containing now.
func (s *schedule) IsTime(now time.Time) bool {
	s.Lock()
	defer s.Unlock()
	if now.Before(s.next) {
		return false
	}
	for !now.Before(s.next) {
		s.next = s.next.Add(s.period)
	}
	return true
}

func (s *schedule) Remaining(now time.Time) time.Duration {
	s.Lock()
	defer s.Unlock()
	return s.next.Sub(now)
}

type limiter struct {
	counts        accessCounts
	resetSchedule schedule
	limit         int
	clock         clocker
}

func (l *limiter) AccessAllowed(key string) (bool, time.Duration) {
	now := l.clock.Now()
	if l.resetSchedule.IsTime(now) {
		l.counts.Reset()
	}
	if l.counts.AccessAllowed(key, l.limit) {
		return true, 0
	}
	return false, l.resetSchedule.Remaining(now)
}

// NewLimiter returns a limiter allowing limit requests per key and window.
func NewLimiter(window time.Duration, limit int) Limiter {
	return newLimiter(window, limit, systemClock{})
}

func newLimiter(window time.Duration, limit int, clock clocker) *limiter {
	l := &limiter{
		resetSchedule: schedule{period: window, next: clock.Now().Add(window)},
		limit:         limit,
		clock:         clock,
	}
	l.counts.Reset()
	return l
}

// NoLimit allows every request.
type NoLimit struct{}

func (NoLimit) AccessAllowed(string) (bool, time.Duration) { return true, 0 }

// ClientAddress returns the key used for rate limiting a request: the
// remote IP address, or, when running behind a trusted proxy, the first
// address in X-Forwarded-For.
func ClientAddress(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if addr := strings.TrimSpace(first); addr != "" {
				return addr
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
