package handlers

import (
	"log"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const rateLimitedMessage = "Too many requests, please try again later."

// ipRateLimiter keeps one token bucket per client IP
type ipRateLimiter struct {
	limiters map[string]*limiterInfo
	mu       sync.Mutex
	// requests allowed per IP per minute
	requestsPerMinute int
	burst             int
	// entries idle for longer than staleAfter are dropped, at most once per cleanupInterval
	cleanupInterval time.Duration
	staleAfter      time.Duration
	lastCleanup     time.Time
	now             func() time.Time
	// proxy headers are only read from these peers
	trustedProxies []netip.Prefix
}

type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

func newIPRateLimiter(requestsPerMinute, burst int, trustedProxies []netip.Prefix) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:          make(map[string]*limiterInfo),
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		cleanupInterval:   5 * time.Minute,
		staleAfter:        10 * time.Minute,
		lastCleanup:       time.Now(),
		now:               time.Now,
		trustedProxies:    trustedProxies,
	}
}

// parseTrustedProxies accepts single addresses ("10.0.0.1") and CIDR ranges
// ("10.0.0.0/8"). Invalid entries are logged and skipped.
func parseTrustedProxies(entries []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				log.Printf("Warning: ignoring trusted proxy %q: %v", entry, err)
				continue
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Printf("Warning: ignoring trusted proxy %q: %v", entry, err)
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}

// getLimiter returns the limiter for ip, creating it on first use
func (i *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastCleanup) > i.cleanupInterval {
		i.removeStale(now)
	}

	info, exists := i.limiters[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(i.requestsPerMinute)), i.burst)
		info = &limiterInfo{limiter: limiter}
		i.limiters[ip] = info
	}
	info.lastAccessed = now

	return info.limiter
}

func (i *ipRateLimiter) removeStale(now time.Time) {
	for ip, info := range i.limiters {
		if now.Sub(info.lastAccessed) > i.staleAfter {
			delete(i.limiters, ip)
		}
	}
	i.lastCleanup = now
}

// Limit passes requests to next while the client has allowance left and to
// rejected once it is exhausted.
func (i *ipRateLimiter) Limit(next, rejected http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !i.getLimiter(i.clientIP(r)).Allow() {
			rejected(w, r)
			return
		}
		next(w, r)
	}
}

// rejectJSON answers a rate limited API request
func rejectJSON(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, contactResponse{Message: rateLimitedMessage})
}

// clientIP returns the connection address, or the address named by the proxy
// headers when the connection comes from a trusted proxy.
func (i *ipRateLimiter) clientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !i.trusted(peer) {
		return peer
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// client, proxy1, proxy2
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if ip, _, err := net.SplitHostPort(first); err == nil {
			return ip
		}
		if first != "" {
			return first
		}
	}

	return peer
}

func (i *ipRateLimiter) trusted(peer string) bool {
	if len(i.trustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range i.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
