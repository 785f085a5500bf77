package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/me/codelab/internal/token"
	"github.com/me/codelab/pkg/model"
)

// handleLogin receives the OIDC initiation from the platform: iss and
// login_hint must both be present. Their values are opaque here; they are
// passed through to the platform's auth endpoint together with fresh state
// and nonce values.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("malformed initiation request"))
		return
	}
	iss := r.Form.Get("iss")
	loginHint := r.Form.Get("login_hint")
	if iss == "" || loginHint == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("iss and login_hint are required"))
		return
	}

	if s.config.AuthURL == "" {
		s.logger.Error("OIDC initiation received but no auth endpoint configured")
		respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
			Code:    model.ErrInternal,
			Message: "platform auth endpoint not configured",
		})
		return
	}

	q := url.Values{}
	q.Set("iss", iss)
	q.Set("login_hint", loginHint)
	q.Set("scope", "openid")
	q.Set("response_type", "id_token")
	q.Set("response_mode", "form_post")
	q.Set("redirect_uri", s.config.ToolURL)
	q.Set("state", uuid.New().String())
	q.Set("nonce", uuid.New().String())
	if hint := r.Form.Get("lti_message_hint"); hint != "" {
		q.Set("lti_message_hint", hint)
	}

	s.logger.Info("OIDC initiation, handing off to platform", "issuer", iss)
	http.Redirect(w, r, s.config.AuthURL+"?"+q.Encode(), http.StatusFound)
}

// handleLaunch receives the platform's launch callback carrying an
// id_token, mints an opaque ltik credential for it, and redirects the
// browser to the tool with that credential in the query string. The tool
// side captures and strips it on arrival.
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("malformed launch request"))
		return
	}
	rawToken := r.Form.Get("id_token")
	if rawToken == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("id_token is required"))
		return
	}

	claims, err := token.Decode(rawToken)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, token.ErrMissingSubject) {
			status = http.StatusUnprocessableEntity
		}
		s.logger.Warn("launch token rejected", "error", err)
		respondError(w, reqID, status,
			model.NewValidationError("launch token rejected: "+err.Error()))
		return
	}
	if !token.IssuerRecognized(claims.Issuer, s.config.Issuers) {
		s.logger.Warn("launch from unrecognized issuer", "issuer", claims.Issuer)
	}

	credential, err := newCredential()
	if err != nil {
		s.logger.Error("credential generation failed", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "could not establish session",
		})
		return
	}

	now := time.Now()
	sess := &model.LaunchSession{
		ID:           "sess_" + uuid.New().String(),
		Credential:   credential,
		UserID:       claims.Subject,
		Roles:        claims.Roles,
		ContextID:    claims.ContextID,
		ContextLabel: claims.ContextLabel,
		Issuer:       claims.Issuer,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.config.SessionTTL),
	}
	if len(sess.Roles) == 0 {
		sess.Roles = []string{model.RoleLearner}
	}

	if err := s.store.CreateLaunchSession(r.Context(), sess); err != nil {
		s.logger.Error("session store failed", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "could not establish session",
		})
		return
	}

	s.logger.Info("launch session established",
		"user", sess.UserID, "context", sess.ContextID, "session", sess.ID)

	target, err := url.Parse(s.config.ToolURL)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "tool URL misconfigured",
		})
		return
	}
	q := target.Query()
	q.Set("ltik", credential)
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

// newCredential generates a cryptographically random opaque credential.
func newCredential() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "ltik_" + hex.EncodeToString(b), nil
}
