package model

import "time"

// LaunchSession is the backend-side session record minted at LTI launch
// time. The opaque credential ("ltik") handed to the tool maps to exactly
// one of these until it expires or is revoked.
type LaunchSession struct {
	ID           string    `json:"id"`
	Credential   string    `json:"-"` // opaque ltik, never exposed via JSON
	UserID       string    `json:"user_id"`
	Roles        []string  `json:"roles"`
	ContextID    string    `json:"context_id"`
	ContextLabel string    `json:"context_label"`
	Issuer       string    `json:"issuer"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired reports whether the launch session has expired.
func (s *LaunchSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// GradeRecord is a recorded score submission, the backend's system of
// record before the AGS forward to the LMS.
type GradeRecord struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	ContextID       string    `json:"context_id"`
	Score           float64   `json:"score"`            // 0-100 as submitted
	NormalizedScore float64   `json:"normalized_score"` // 0.0-1.0 AGS form
	Comment         string    `json:"comment,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
