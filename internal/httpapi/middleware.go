package httpapi

import (
	"context"
	"net/http"
	"strings"

	authdomain "github.com/corveoperu/cuervo-blanco-web/internal/auth/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/auth/session"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	userKeyContextKey contextKey = "user_key"
)

// SessionResolver maps opaque tokens to sessions.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// Identity resolves who is making the request. A valid session token wins;
// without one, an X-Guest-Key header identifies an anonymous shopper. Either
// way the request carries a user key downstream; routes that need one reject
// requests that have neither.
func Identity(auth SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				sess, err := auth.Resolve(ctx, token)
				if err == nil {
					ctx = context.WithValue(ctx, sessionContextKey, sess)
					ctx = context.WithValue(ctx, userKeyContextKey, "user:"+sess.UserID.String())
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				respondError(w, http.StatusUnauthorized, "invalid_session", "session is invalid or expired")
				return
			}

			if guestKey := strings.TrimSpace(r.Header.Get("X-Guest-Key")); guestKey != "" {
				ctx = context.WithValue(ctx, userKeyContextKey, "guest:"+guestKey)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUserKey guards routes that need a shopper identity, logged in or
// guest.
func RequireUserKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userKeyFromContext(r.Context()) == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing session token or guest key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin guards the operations console routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		if sess == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
			return
		}
		if sess.Role != authdomain.RoleAdmin {
			respondError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

func userKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(userKeyContextKey).(string)
	return key
}
