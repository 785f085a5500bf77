package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/codelab/pkg/model"
)

// handleListExercises returns the catalog, optionally filtered by
// ?difficulty= and ?category=.
func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	difficulty := model.Difficulty(r.URL.Query().Get("difficulty"))
	category := model.Category(r.URL.Query().Get("category"))

	respondOK(w, reqID, s.catalog.List(difficulty, category))
}

// handleGetExercise returns one exercise by ID.
func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	ex, ok := s.catalog.Get(id)
	if !ok {
		respondError(w, reqID, http.StatusNotFound,
			model.NewNotFoundError("exercise", id))
		return
	}
	respondOK(w, reqID, ex)
}
