package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nextstepz/community/internal/auth"
	"github.com/nextstepz/community/internal/httpx/response"
)

// MsgLoginRequired is shown when an anonymous caller hits a protected route
const MsgLoginRequired = "Vui lòng đăng nhập để sử dụng tính năng này"

// TokenParser verifies bearer tokens
type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

type viewerKey struct{}

// WithViewer stores the authenticated caller in ctx
func WithViewer(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, viewerKey{}, id)
}

// Viewer returns the authenticated caller, if any
func Viewer(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(viewerKey{}).(auth.Identity)
	return id, ok
}

// ViewerID returns the caller's user id or "" for anonymous requests
func ViewerID(ctx context.Context) string {
	id, _ := Viewer(ctx)
	return id.UserID
}

// Authenticate attaches the caller identity when a valid bearer token is present.
// Requests without a usable token continue anonymously.
func Authenticate(p TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := p.Parse(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), id)))
		})
	}
}

// RequireViewer rejects anonymous requests with 401
func RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := Viewer(r.Context()); !ok {
			response.Unauthorized(w, MsgLoginRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
