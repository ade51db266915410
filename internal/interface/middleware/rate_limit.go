package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/hobbyhub/gateway/pkg/response"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// ExposedHeaders lists the response headers browsers must be allowed to read.
func ExposedHeaders() []string {
	return []string{"Content-Length", HeaderRequestID, HeaderRetryAfter,
		HeaderRateLimitLimit, HeaderRateLimitRemaining, HeaderRateLimitReset}
}

// Limit allows Max requests per key in each fixed Window.
type Limit struct {
	Max    int
	Window time.Duration
}

func PerMinute(n int) Limit { return Limit{Max: n, Window: time.Minute} }

func (l Limit) enabled() bool { return l.Max > 0 && l.Window > 0 }

// bucket returns the window index for t and when that window closes.
func (l Limit) bucket(t time.Time) (int64, time.Time) {
	idx := t.UnixNano() / int64(l.Window)
	return idx, time.Unix(0, (idx+1)*int64(l.Window))
}

// KeyFunc builds the counter key for a request.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true for requests that skip the limit.
type AllowFunc func(*gin.Context) bool

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyByIPAndPath limits each client address per route.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUser limits signed-in users by email and everyone else by IP.
func KeyByUser() KeyFunc {
	return func(c *gin.Context) string {
		email := strings.ToLower(c.GetString(CtxUserEmailKey))
		if email == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + email
	}
}

// AllowPrivateIP skips loopback and private addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(ipFromCtx(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}

// AllowSafeMethods skips GET and HEAD so only writes count.
func AllowSafeMethods() AllowFunc {
	return func(c *gin.Context) bool {
		return c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
	}
}

func AnyOf(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, fn := range fns {
			if fn != nil && fn(c) {
				return true
			}
		}
		return false
	}
}

// RateLimit counts requests per key in Redis and answers 429 once the limit
// is exceeded. A nil client disables it; Redis errors let the request through.
func RateLimit(rdb *redis.Client, limit Limit, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || !limit.enabled() || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		idx, closes := limit.bucket(time.Now())
		key := keyFn(c) + ":" + strconv.FormatInt(idx, 10)
		var incr *redis.IntCmd
		_, err := rdb.TxPipelined(c.Request.Context(), func(p redis.Pipeliner) error {
			incr = p.Incr(c.Request.Context(), key)
			p.PExpireAt(c.Request.Context(), key, closes)
			return nil
		})
		if err != nil {
			c.Next()
			return
		}

		count := int(incr.Val())
		reset := int(time.Until(closes).Seconds()) + 1
		c.Header(HeaderRateLimitLimit, strconv.Itoa(limit.Max))
		c.Header(HeaderRateLimitRemaining, strconv.Itoa(max(limit.Max-count, 0)))
		c.Header(HeaderRateLimitReset, strconv.Itoa(reset))
		if count > limit.Max {
			c.Header(HeaderRetryAfter, strconv.Itoa(reset))
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
