package middleware

import (
	"context"
	"net/http"

	"github.com/finovant/accesscore"
	"github.com/finovant/accesscore/policy"
)

type sessionContextKey struct{}

// SessionFromContext returns the session stored by a guard, if any.
func SessionFromContext(ctx context.Context) (*accesscore.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*accesscore.Session)
	return sess, ok
}

// RequireSession rejects requests with 401 while the engine has no
// committed session. The session is injected into the request context.
func RequireSession(engine *accesscore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			sess := engine.CurrentSession()
			if sess == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission rejects with 401 when no session exists and 403 when
// the engine denies action on resource. Owner and business facts are not
// available at the routing layer, so the check runs with empty facts;
// handlers needing instance-level checks call Engine.IsAllowed themselves.
func RequirePermission(engine *accesscore.Engine, resource policy.Resource, action policy.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			sess := engine.CurrentSession()
			if sess == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !engine.IsAllowed(resource, action, "", "") {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
