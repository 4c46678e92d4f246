package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bloodaid/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyUser contextKey = "user"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the bearer token and loads the user it names. The
// store lookup keeps role and status fresh, so an admin block or role
// change takes effect on the next request, not at token expiry.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.respondError(w, types.ErrUnauthenticated)
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			s.respondError(w, types.ErrUnauthenticated)
			return
		}

		claims, err := s.tokens.Verify(raw)
		if err != nil {
			s.logger.WithError(err).Debug("session token rejected")
			s.respondError(w, types.ErrUnauthenticated)
			return
		}

		user, err := s.userRepo.UserByEmail(r.Context(), claims.Email)
		if err != nil {
			s.logger.WithError(err).WithField("email", claims.Email).Warn("token subject has no user record")
			s.respondError(w, types.ErrUnauthenticated)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"email": user.Email,
			"role":  user.Role,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			r.URL.Path = strings.TrimSuffix(path, "/")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) userFromContext(ctx context.Context) (*types.User, error) {
	user, ok := ctx.Value(contextKeyUser).(*types.User)
	if !ok || user == nil {
		return nil, types.ErrUnauthenticated
	}
	return user, nil
}
