package backend

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

const (
	HeaderUserEmail = "X-User-Email"
	HeaderUserUID   = "X-User-UID"
)

// HeaderBuilder produces the headers attached to outgoing backend requests.
type HeaderBuilder struct {
	Logger *logrus.Logger
}

func NewHeaderBuilder(logger *logrus.Logger) *HeaderBuilder {
	return &HeaderBuilder{Logger: logger}
}

// Build never fails. A token that cannot be fetched is logged and skipped; the
// identity headers are still set so the backend can fall back to them.
func (b *HeaderBuilder) Build(ctx context.Context, user *entity.User) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if user == nil {
		return h
	}
	if user.Tokens != nil {
		token, err := user.Tokens.IDToken(ctx)
		switch {
		case err != nil:
			if b.Logger != nil {
				b.Logger.WithError(err).WithField("email", user.Email).Warn("id token retrieval failed")
			}
		case token != "":
			h.Set("Authorization", "Bearer "+token)
		}
	}
	h.Set(HeaderUserEmail, user.Email)
	h.Set(HeaderUserUID, user.UID)
	return h
}
