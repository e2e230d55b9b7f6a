package ratelimiter

import (
	"net"
	"strings"
	"sync"
	"time"

	"github.com/nknorg/ballot/common"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout     = 10 * time.Minute
	limiterCleanupInterval = 5 * time.Minute
)

// Scope is the first part of a limiter key. Limiters in different scopes
// never share tokens.
type Scope string

const (
	RPC       Scope = "rpc"
	Websocket Scope = "ws"
	Operation Scope = "op"
)

// Limit is a token bucket refilled at Rate tokens per second, holding at most
// Burst tokens. A non-positive Rate disables limiting.
type Limit struct {
	Rate  float64
	Burst int
}

var (
	rateLimiters = common.NewGoCache(limiterIdleTimeout, limiterCleanupInterval)
	lock         sync.Mutex
)

func limiterKey(scope Scope, id string) []byte {
	return []byte(strings.Join([]string{string(scope), id}, ":"))
}

// GetLimiter returns the limiter of id in scope, creating it with limit if it
// is not cached. A cached limiter keeps its original limit until it has been
// idle for limiterIdleTimeout.
func GetLimiter(scope Scope, id string, limit Limit) *rate.Limiter {
	lock.Lock()
	defer lock.Unlock()

	key := limiterKey(scope, id)
	if limiter, ok := rateLimiters.Get(key); ok {
		rateLimiters.Set(key, limiter)
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rate.Limit(limit.Rate), limit.Burst)
	rateLimiters.Set(key, limiter)

	return limiter
}

// Allow takes one token for id in scope.
func Allow(scope Scope, id string, limit Limit) bool {
	if limit.Rate <= 0 {
		return true
	}
	return GetLimiter(scope, id, limit).Allow()
}

// AllowHost takes one token for the host part of remoteAddr. Requests whose
// address can not be split are let through.
func AllowHost(scope Scope, remoteAddr string, limit Limit) (string, bool) {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr, true
	}
	return host, Allow(scope, host, limit)
}
