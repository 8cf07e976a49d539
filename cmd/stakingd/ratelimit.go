package main

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorIdleTTL is how long a client's limiter survives without requests.
const visitorIdleTTL = 5 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter throttles the operator surface per remote address.
type clientLimiter struct {
	perSecond rate.Limit
	burst     int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	clockNow  func() time.Time
}

func newClientLimiter(requestsPerMinute float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		perSecond: rate.Limit(requestsPerMinute / 60),
		burst:     burst,
		visitors:  make(map[string]*visitor),
		clockNow:  time.Now,
	}
}

func (c *clientLimiter) limiter(id string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clockNow()
	if now.Sub(c.lastSweep) >= visitorIdleTTL {
		c.evictIdle(now)
	}
	v, ok := c.visitors[id]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(c.perSecond, c.burst)}
		c.visitors[id] = v
	}
	v.lastSeen = now
	return v.limiter
}

// evictIdle drops clients that have not been seen for visitorIdleTTL. Callers
// hold c.mu.
func (c *clientLimiter) evictIdle(now time.Time) {
	for id, v := range c.visitors {
		if now.Sub(v.lastSeen) >= visitorIdleTTL {
			delete(c.visitors, id)
		}
	}
	c.lastSweep = now
}

func (c *clientLimiter) tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visitors)
}

func (c *clientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !c.limiter(clientID(req)).Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func clientID(req *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
