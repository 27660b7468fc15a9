package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	RoleKey   contextKey = "role"
)

// AuthMiddleware resolves the access token (cookie or bearer header) into the
// caller identity. Requests without a valid token pass through anonymously;
// handlers that need identity check the context themselves.
func AuthMiddleware(sessions ports.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie("access_token"); err == nil {
				token = cookie.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
			if token != "" {
				if userID, role, err := sessions.Verify(token); err == nil {
					ctx := context.WithValue(r.Context(), UserIDKey, userID)
					ctx = context.WithValue(ctx, RoleKey, role)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerFromContext(r *http.Request) (uuid.UUID, domain.Role, bool) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := r.Context().Value(RoleKey).(domain.Role)
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, role, true
}

func requestMeta(r *http.Request) ports.RequestMeta {
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx > 0 {
		ip = ip[:idx]
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return ports.RequestMeta{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}
