// Per-client quota on the tool endpoints. Each client gets a fixed number of
// tool uses per window; the first use after the window lapses opens a new one.
package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ToolQuota counts tool uses per client in fixed windows.
type ToolQuota struct {
	mu      sync.Mutex
	windows map[string]*useWindow
	uses    int           // uses allowed per window
	window  time.Duration // window length
	now     func() time.Time
}

type useWindow struct {
	opened time.Time
	used   int
}

// NewToolQuota allows uses tool requests per client in each window.
func NewToolQuota(uses int, window time.Duration) *ToolQuota {
	return &ToolQuota{
		windows: make(map[string]*useWindow),
		uses:    uses,
		window:  window,
		now:     time.Now,
	}
}

// Take spends one use for client. When the quota is exhausted it reports
// false and how long until the client's window reopens.
func (q *ToolQuota) Take(client string) (bool, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	w, ok := q.windows[client]
	if !ok || now.Sub(w.opened) >= q.window {
		q.pruneLocked(now)
		q.windows[client] = &useWindow{opened: now, used: 1}
		return true, 0
	}
	if w.used < q.uses {
		w.used++
		return true, 0
	}
	return false, w.opened.Add(q.window).Sub(now)
}

// Clients returns the number of clients holding an open window.
func (q *ToolQuota) Clients() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.windows)
}

// pruneLocked drops windows that lapsed more than one window ago.
func (q *ToolQuota) pruneLocked(now time.Time) {
	for client, w := range q.windows {
		if now.Sub(w.opened) > 2*q.window {
			delete(q.windows, client)
		}
	}
}

// limitTools rejects tool requests over quota with 429 and a Retry-After in
// whole seconds, rounded up.
func limitTools(q *ToolQuota, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := q.Take(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			http.Error(w, "too many tool uses, slow down", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func retryAfterSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

// clientIP prefers the first X-Forwarded-For hop, then the remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
