package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/me/codelab/pkg/model"
)

// handleMe returns the canonical session record for the authenticated
// credential. This is the endpoint the tool's session validator calls.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess := SessionFromContext(r.Context())

	respondOK(w, reqID, model.MeResponse{
		UserID: sess.UserID,
		Roles:  sess.Roles,
		Context: model.MeContext{
			ID:    sess.ContextID,
			Label: sess.ContextLabel,
		},
	})
}

// handleGrade records a score submission for the authenticated session.
// The tool sends the score on the 0-100 scale; the AGS-normalized 0..1
// value is derived here. Recording is idempotent from the caller's view:
// resubmitting the same score simply appends another row, and the latest
// row wins when forwarding.
func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess := SessionFromContext(r.Context())

	var req model.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid grade payload"))
		return
	}
	if req.Grade < 0 || req.Grade > 100 {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("grade must be between 0 and 100"))
		return
	}
	// The session, not the payload, is authoritative for who is graded.
	if req.UserID != "" && req.UserID != sess.UserID {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("userId does not match the session"))
		return
	}

	record := &model.GradeRecord{
		ID:              "grade_" + uuid.New().String(),
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		ContextID:       sess.ContextID,
		Score:           req.Grade,
		NormalizedScore: req.Grade / 100,
		Comment:         req.Comment,
		CreatedAt:       time.Now(),
	}

	if err := s.store.RecordGrade(r.Context(), record); err != nil {
		s.logger.Error("grade record failed", "user", sess.UserID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "could not record grade",
		})
		return
	}

	s.logger.Info("grade recorded",
		"user", sess.UserID, "context", sess.ContextID,
		"score", record.Score, "normalized", record.NormalizedScore)

	respondOK(w, reqID, record)
}
