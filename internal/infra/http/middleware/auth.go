package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type contextKey string

const viewerKey contextKey = "viewer"

// Claims do token do provedor de auth. O id do usuário vem em "sub".
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type ViewerResolver interface {
	ResolveViewer(ctx context.Context, userID string) (entity.Viewer, error)
}

// Auth valida o Bearer token e carrega o papel do usuário pelo perfil.
func Auth(secret []byte, resolver ViewerResolver) func(http.Handler) http.Handler {
	return authenticate(secret, resolver, false)
}

// StreamAuth é o Auth da rota SSE: EventSource não manda header, então só
// ali o token também pode vir em ?access_token=.
func StreamAuth(secret []byte, resolver ViewerResolver) func(http.Handler) http.Handler {
	return authenticate(secret, resolver, true)
}

func authenticate(secret []byte, resolver ViewerResolver, allowQuery bool) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (any, error) {
		return secret, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r, allowQuery)
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing token")
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(raw, claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !parsed.Valid || claims.Subject == "" {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			viewer, err := resolver.ResolveViewer(r.Context(), claims.Subject)
			if err != nil {
				var de *usecase.DomainError
				if errors.As(err, &de) {
					writeAuthError(w, de.Status, de.Message)
					return
				}
				writeAuthError(w, http.StatusServiceUnavailable, "could not load profile")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}

func bearerToken(r *http.Request, allowQuery bool) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if allowQuery {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

func WithViewer(ctx context.Context, v entity.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

func ViewerFrom(ctx context.Context) (entity.Viewer, bool) {
	v, ok := ctx.Value(viewerKey).(entity.Viewer)
	return v, ok
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
