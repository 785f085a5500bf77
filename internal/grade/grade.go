// Package grade reports scores back through the active session. It is the
// only writer of the session's grade-sync fields.
package grade

import (
	"context"
	"log/slog"
	"time"

	"github.com/me/codelab/pkg/model"
)

// Transport posts a grade through a session credential.
type Transport interface {
	SubmitGrade(ctx context.Context, credential string, grade model.GradeRequest) error
}

// Submitter sends scores for the bound identity and tracks the last
// successful sync on the session.
type Submitter struct {
	transport Transport
	session   *model.Session
	logger    *slog.Logger
}

// NewSubmitter creates a grade submitter over the given transport and
// session.
func NewSubmitter(transport Transport, session *model.Session, logger *slog.Logger) *Submitter {
	return &Submitter{
		transport: transport,
		session:   session,
		logger:    logger.With("component", "grade"),
	}
}

// Submit reports a score in [0,100] for the session's identity. With no
// identity, or with the development sentinel identity, nothing is
// transmitted: the call logs the simulated send and reports success so the
// exercise flow behaves identically offline. Failures return false and
// never propagate; the caller simply shows the grade as not synced.
func (s *Submitter) Submit(ctx context.Context, score float64) bool {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	identity := s.session.Identity
	if identity == nil || identity.IsDev() {
		s.logger.Info("grade submission simulated locally",
			"score", score, "normalized", score/100)
		s.markSent(score)
		return true
	}

	req := model.GradeRequest{
		UserID:  identity.UserID,
		Grade:   score,
		Comment: "Evaluated by Codelab",
	}

	if err := s.transport.SubmitGrade(ctx, identity.SessionCredential, req); err != nil {
		s.logger.Warn("grade submission failed",
			"user", identity.UserID, "score", score, "error", err)
		return false
	}

	s.logger.Info("grade submitted",
		"user", identity.UserID, "score", score, "normalized", score/100)
	s.markSent(score)
	return true
}

func (s *Submitter) markSent(score float64) {
	now := time.Now()
	s.session.LastGradeSent = &score
	s.session.LastGradeTime = &now
}
