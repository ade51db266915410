package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIPKey holds the resolved client address.
const CtxRealIPKey = "real_ip"

// RealIP resolves the client address from proxy headers, most specific first:
// CF-Connecting-IP, X-Real-IP, the first "for=" of Forwarded, the left-most
// X-Forwarded-For entry. Unparseable values are skipped; gin's ClientIP is
// the fallback.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := firstIP(
			c.GetHeader("CF-Connecting-IP"),
			c.GetHeader("X-Real-IP"),
			forwardedFor(c.GetHeader("Forwarded")),
			leftmost(c.GetHeader("X-Forwarded-For")),
		)
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(CtxRealIPKey, ip)
		c.Next()
	}
}

func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func firstIP(candidates ...string) string {
	for _, v := range candidates {
		if ip := parseHostIP(v); ip != "" {
			return ip
		}
	}
	return ""
}

// parseHostIP accepts a bare address, host:port, or a bracketed IPv6 literal.
func parseHostIP(v string) string {
	v = strings.Trim(strings.TrimSpace(v), `"`)
	if v == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(v); err == nil {
		v = host
	}
	v = strings.TrimSuffix(strings.TrimPrefix(v, "["), "]")
	if ip := net.ParseIP(v); ip != nil {
		return ip.String()
	}
	return ""
}

func leftmost(list string) string {
	first, _, _ := strings.Cut(list, ",")
	return first
}

// forwardedFor returns the for= parameter of the first Forwarded element.
func forwardedFor(header string) string {
	for _, pair := range strings.Split(leftmost(header), ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && strings.EqualFold(k, "for") {
			return v
		}
	}
	return ""
}
