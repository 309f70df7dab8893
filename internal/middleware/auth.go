package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/hostel-survival-kit/internal/auth"
)

// RoleChecker answers whether a user is a hostel rep.
type RoleChecker interface {
	IsRep(ctx context.Context, uid string) (bool, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// verified identity on the request context.
func Authenticate(v auth.Verifier, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Please login first")
				return
			}

			id, err := v.Verify(r.Context(), token)
			if err != nil {
				log.WithError(err).Debug("token rejected")
				writeError(w, http.StatusUnauthorized, "Invalid login token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRep allows only registered reps through. Use after Authenticate.
func RequireRep(roles RoleChecker, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.FromContext(r.Context())
			if id == nil {
				writeError(w, http.StatusUnauthorized, "Please login first")
				return
			}

			rep, err := roles.IsRep(r.Context(), id.UID)
			if err != nil {
				log.WithError(err).WithField("uid", id.UID).Error("role lookup failed")
				writeError(w, http.StatusInternalServerError, "Something went wrong")
				return
			}
			if !rep {
				writeError(w, http.StatusForbidden, "Only hostel reps can do this")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
