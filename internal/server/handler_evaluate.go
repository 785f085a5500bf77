package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/me/codelab/internal/evaluate"
	"github.com/me/codelab/pkg/model"
)

// handleEvaluate runs a submission against an exercise and returns the
// verdict. Evaluation failures never affect any launch session.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid evaluation payload"))
		return
	}
	if req.Code == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("code is required"))
		return
	}

	ex, ok := s.catalog.Get(req.ExerciseID)
	if !ok {
		respondError(w, reqID, http.StatusNotFound,
			model.NewNotFoundError("exercise", req.ExerciseID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.EvalTimeout)
	defer cancel()

	result, err := s.evaluator.Evaluate(ctx, ex, req.Code)
	if err != nil {
		var svcErr *evaluate.ServiceError
		if errors.As(err, &svcErr) {
			s.logger.Error("evaluation service failed",
				"exercise", ex.ID, "status", svcErr.Status, "error", err)
			respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
				Code:    model.ErrInternal,
				Message: svcErr.UserMessage(),
			})
			return
		}
		s.logger.Error("evaluation failed", "exercise", ex.ID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "evaluation failed",
		})
		return
	}

	respondOK(w, reqID, result)
}
