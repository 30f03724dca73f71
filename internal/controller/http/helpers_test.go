package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/nextstepz/community/internal/auth"
	"github.com/nextstepz/community/internal/httpx/middleware"
)

type routes interface {
	RegisterRoutes(r chi.Router)
}

// newRouter mounts h, acting as viewer when viewer is not empty
func newRouter(h routes, viewer string) chi.Router {
	r := chi.NewRouter()
	if viewer != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := middleware.WithViewer(req.Context(), auth.Identity{UserID: viewer})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type likeCounter struct {
	calls map[string][]bool
}

func (l *likeCounter) LikeToggled(target string, liked bool) {
	if l.calls == nil {
		l.calls = map[string][]bool{}
	}
	l.calls[target] = append(l.calls[target], liked)
}
