package entity

import "context"

// TokenSource retrieves a fresh identity token for the signed-in user.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) IDToken(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken replays a token that was already presented by the client.
type StaticToken string

func (t StaticToken) IDToken(context.Context) (string, error) { return string(t), nil }

// User is the session user supplied by the external auth provider.
// A nil *User means an anonymous visitor.
type User struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Tokens      TokenSource
}

// Name returns the display name, falling back to the email address.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
