package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Error     *APIError `json:"error"`
}

// MeResponse is the payload of GET /api/me: the canonical session record the
// backend returns for a recognized credential.
type MeResponse struct {
	UserID  string    `json:"userId"`
	Roles   []string  `json:"roles"`
	Context MeContext `json:"context"`
}

// MeContext is the course-context portion of MeResponse.
type MeContext struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// GradeRequest is the payload of POST /api/grade.
type GradeRequest struct {
	UserID  string  `json:"userId"`
	Grade   float64 `json:"grade"` // 0-100, as shown to the student
	Comment string  `json:"comment,omitempty"`
}

// EvaluateRequest is the payload of POST /api/v1/evaluate.
type EvaluateRequest struct {
	ExerciseID string `json:"exercise_id"`
	Code       string `json:"code"`
}
