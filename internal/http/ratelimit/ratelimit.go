// Package ratelimit throttles page requests per client address.
package ratelimit

import (
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jw6ventures/callhistory/internal/logging"
)

const maxClients = 10000

// Limiter hands each client address its own token bucket.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rate    rate.Limit
	burst   int
	idle    time.Duration
	proxies []netip.Prefix

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New starts a limiter allowing r requests per second with bursts of b.
// Buckets unused for twice the sweep interval are dropped. Forwarding headers
// are honoured only for peers inside trustedProxies; with no proxies listed
// they are honoured for everyone. Call Close to stop the sweeper.
func New(r rate.Limit, b int, sweep time.Duration, trustedProxies []string) *Limiter {
	l := &Limiter{
		clients: make(map[string]*client),
		rate:    r,
		burst:   b,
		idle:    2 * sweep,
		proxies: parsePrefixes(trustedProxies),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.sweep(sweep)
	return l
}

func parsePrefixes(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if p, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return out
}

// Close stops the background sweeper. It is safe to call more than once.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *Limiter) sweep(every time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, c := range l.clients {
				if now.Sub(c.lastSeen) > l.idle {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Allow reports whether key may make a request now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= maxClients {
			l.evictOldest()
		}
		c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *Limiter) evictOldest() {
	var oldest string
	var oldestSeen time.Time
	for key, c := range l.clients {
		if oldest == "" || c.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen = key, c.lastSeen
		}
	}
	delete(l.clients, oldest)
}

// Middleware answers 429 with a Retry-After hint once a client runs out of
// tokens.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	retryAfter := "1"
	if l.rate > 0 {
		retryAfter = strconv.Itoa(max(1, int(1/float64(l.rate)+0.5)))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := l.ClientIP(r)
			if !l.Allow(ip) {
				logging.FromContext(r.Context()).Warn("rate limit exceeded", zap.String("client_ip", ip))
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP resolves the address a request originated from.
func (l *Limiter) ClientIP(r *http.Request) string {
	remote := parseAddr(r.RemoteAddr)
	if remote.IsValid() && len(l.proxies) > 0 && !l.trusted(remote) {
		return remote.String()
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if a, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return a.Unmap().String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if a, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return a.Unmap().String()
		}
	}
	if remote.IsValid() {
		return remote.String()
	}
	return r.RemoteAddr
}

func (l *Limiter) trusted(a netip.Addr) bool {
	for _, p := range l.proxies {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func parseAddr(s string) netip.Addr {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap()
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return a.Unmap()
	}
	return netip.Addr{}
}
