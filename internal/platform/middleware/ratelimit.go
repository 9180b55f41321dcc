// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/respond"
)

// buckets hands out one token bucket per client IP. Idle clients age out of
// the LRU after [constants.RateLimitClientTTL].
type buckets struct {
	clients *expirable.LRU[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

func (buckets *buckets) allow(clientIP string) bool {
	limiter, ok := buckets.clients.Get(clientIP)
	if !ok {
		limiter = rate.NewLimiter(buckets.limit, buckets.burst)
		// Concurrent first requests may race here; the loser's bucket wins a
		// single extra token at most.
		buckets.clients.Add(clientIP, limiter)
	}
	return limiter.Allow()
}

/*
RateLimit throttles each client IP with its own token bucket.

Every call builds an independent bucket set, so the global limit and the
stricter credential limit never share budgets.
*/
func RateLimit(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := &buckets{
		clients: expirable.NewLRU[string, *rate.Limiter](constants.RateLimitMaxClients, nil, constants.RateLimitClientTTL),
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
	}

	retryAfter := 1
	if requestsPerSecond > 0 && requestsPerSecond < 1 {
		retryAfter = int(math.Ceil(1 / requestsPerSecond))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !limiter.allow(RealIP(request)) {
				writer.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
