package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	domain "accounts/backend/internal/domain/account"

	"github.com/sirupsen/logrus"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func withLogging(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)
		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   status,
			"size":     recorder.size,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func withCORS(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && isOriginAllowed(origin, allowedOrigins) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isOriginAllowed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == "*" {
			return true
		}
		if strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}

type ctxKeyUser struct{}

// authorize wraps a handler so it only runs for a caller presenting a valid
// session cookie that resolves to an active user holding the required role.
// An empty required role admits any authenticated user. The gate only
// reads; the wrapped handler runs at most once, after every check passes.
//
// Missing cookie, undecodable or expired token, and a token naming a
// missing or inactive user all produce the same 401; only the log line
// tells them apart. A role mismatch produces 403.
func (s *Server) authorize(required domain.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.cookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := s.authService.ResolveToken(r.Context(), cookie.Value)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				s.log.WithField("reason", "token expired").Debug("session rejected")
			case errors.Is(err, domain.ErrTokenInvalid):
				s.log.WithField("reason", "token invalid").Debug("session rejected")
			case errors.Is(err, domain.ErrUserNotFound):
				s.log.WithField("reason", "no active user for token").Debug("session rejected")
			default:
				s.log.WithError(err).Error("session resolution failed")
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if required != "" && user.Role != required {
			writeError(w, http.StatusForbidden, "insufficient privileges")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(ctxKeyUser{}).(*domain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
