package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/me/codelab/pkg/model"
)

const ctxKeyLaunchSession ctxKey = "launch_session"

// SessionFromContext extracts the authenticated launch session from the
// request context.
func SessionFromContext(ctx context.Context) *model.LaunchSession {
	if sess, ok := ctx.Value(ctxKeyLaunchSession).(*model.LaunchSession); ok {
		return sess
	}
	return nil
}

// credentialMiddleware authenticates tool API requests by the opaque ltik
// credential. The credential is accepted from either channel the tool
// sends it on — Authorization header or ltik query parameter — because
// intermediaries may strip one of them.
func (s *Server) credentialMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := RequestIDFromContext(r.Context())

		credential := extractCredential(r)
		if credential == "" {
			respondError(w, reqID, http.StatusUnauthorized,
				model.NewUnauthorizedError("session credential required"))
			return
		}

		sess, err := s.store.GetLaunchSessionByCredential(r.Context(), credential)
		if err != nil {
			s.logger.Error("session lookup failed", "error", err)
			respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
				Code:    model.ErrInternal,
				Message: "authentication error",
			})
			return
		}
		if sess == nil {
			respondError(w, reqID, http.StatusUnauthorized,
				model.NewUnauthorizedError("unrecognized session credential"))
			return
		}
		if sess.IsExpired() {
			if err := s.store.DeleteLaunchSession(r.Context(), sess.ID); err != nil {
				s.logger.Warn("failed to delete expired session", "id", sess.ID, "error", err)
			}
			respondError(w, reqID, http.StatusUnauthorized,
				model.NewUnauthorizedError("session expired"))
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyLaunchSession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractCredential returns the ltik credential from the Authorization
// header or the query string, preferring the header.
func extractCredential(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.URL.Query().Get("ltik")
}
