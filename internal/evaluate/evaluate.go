// Package evaluate defines the evaluation-engine boundary and its
// implementations. Whatever the engine does, its failures stay inside this
// boundary: evaluation never touches the launch session.
package evaluate

import (
	"context"
	"fmt"

	"github.com/me/codelab/pkg/model"
)

// Evaluator scores a submission against an exercise.
type Evaluator interface {
	Evaluate(ctx context.Context, ex *model.Exercise, code string) (*model.EvaluationResult, error)
}

// ServiceError means the evaluation service itself failed (quota,
// unavailability, transport), as opposed to the submission failing its
// checks.
type ServiceError struct {
	Status int // HTTP status when applicable, 0 otherwise
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("evaluation service error (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("evaluation service error: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// UserMessage renders a student-facing explanation for a service failure.
func (e *ServiceError) UserMessage() string {
	switch {
	case e.Status == 429:
		return "Evaluation quota exceeded. Wait a moment before trying again."
	case e.Status >= 500:
		return "The evaluation service is temporarily unavailable. Try again later."
	default:
		return "The evaluation service could not process the submission."
	}
}
