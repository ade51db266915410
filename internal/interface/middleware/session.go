package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/pkg/helpers"
	"github.com/hobbyhub/gateway/pkg/response"
)

const (
	CtxUserKey      = "user"
	CtxUserEmailKey = "userEmail"
	SessionCookie   = "session_token"
)

// bearerToken reads the identity token from the Authorization header, falling
// back to the session cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if tok, err := c.Cookie(SessionCookie); err == nil {
		return tok
	}
	return ""
}

// Session resolves the signed-in user from the presented identity token and
// stores it in the Gin context. Anonymous requests pass through; a token that
// fails to verify is rejected.
func Session(v *helpers.SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := v.Parse(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid session token", err.Error())
			return
		}
		user := &entity.User{
			UID:         claims.UID(),
			Email:       claims.Email,
			DisplayName: claims.Name,
			PhotoURL:    claims.Picture,
			Tokens:      entity.StaticToken(token),
		}
		c.Set(CtxUserKey, user)
		c.Set(CtxUserEmailKey, user.Email)
		c.Next()
	}
}

// RequireSession aborts with 401 unless Session resolved a user.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Abort(c, http.StatusUnauthorized, "login required", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the session user or nil for anonymous visitors.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
