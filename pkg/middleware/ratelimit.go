package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/quire/pkg/handlers"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// client holds one fixed window. A zero-rate limiter never refills, so its
// burst is exactly the number of requests left in the window.
type client struct {
	limiter *rate.Limiter
	resetAt time.Time
}

type limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	max     int
	window  time.Duration
}

// RateLimit returns middleware that caps each client at cfg.Max requests per cfg.Window.
// Expired windows are evicted until ctx is cancelled. Disabled configs pass through.
func RateLimit(ctx context.Context, cfg *RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	l := &limiter{
		clients: make(map[string]*client),
		max:     cfg.Max,
		window:  cfg.WindowDuration(),
	}

	go l.cleanup(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := l.allow(ClientIP(r, cfg.TrustProxy), time.Now())
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				handlers.RespondJSON(w, http.StatusTooManyRequests, handlers.Envelope{
					Success: false,
					Message: rateLimitMessage,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *limiter) allow(ip string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok || !now.Before(c.resetAt) {
		c = &client{
			limiter: rate.NewLimiter(0, l.max),
			resetAt: now.Add(l.window),
		}
		l.clients[ip] = c
	}

	if c.limiter.AllowN(now, 1) {
		return true, 0
	}
	return false, c.resetAt.Sub(now)
}

func (l *limiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.mu.Lock()
			for ip, c := range l.clients {
				if !now.Before(c.resetAt) {
					delete(l.clients, ip)
				}
			}
			l.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// ClientIP returns the client address of r. Proxy headers are consulted only
// when trustProxy is set; otherwise the connection address is used.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
