package model

import "time"

// Session is the process-wide session state of the tool. There is exactly
// one instance per process, created disconnected; the launch controller is
// the only writer of Connected/Identity and the grade submitter the only
// writer of the grade fields.
//
// Invariant: Identity != nil implies Connected.
type Session struct {
	Connected bool      `json:"connected"`
	Identity  *Identity `json:"identity,omitempty"`

	// Observational grade-sync state, set only on successful submission.
	LastGradeSent *float64   `json:"last_grade_sent,omitempty"`
	LastGradeTime *time.Time `json:"last_grade_time,omitempty"`
}

// NewSession returns a session in the initial disconnected state.
func NewSession() *Session {
	return &Session{}
}

// Bind attaches a validated identity and marks the session connected.
func (s *Session) Bind(id *Identity) {
	s.Identity = id
	s.Connected = id != nil
}

// LaunchPhase is the transient state of the launch controller. It exists
// only for the duration of initialization and is never persisted.
type LaunchPhase string

const (
	// PhaseIdle is both the initial state and the terminal success state.
	PhaseIdle LaunchPhase = "IDLE"
	// PhaseAwaitingExternalLogin means the tool handed off to the
	// platform's auth endpoint and is waiting for the re-entry launch.
	PhaseAwaitingExternalLogin LaunchPhase = "AWAITING_EXTERNAL_LOGIN"
	// PhaseValidatingLaunch means a credential is being validated against
	// the backend identity endpoint.
	PhaseValidatingLaunch LaunchPhase = "VALIDATING_LAUNCH"
	// PhaseError is terminal failure; only a fresh launch URL recovers it.
	PhaseError LaunchPhase = "ERROR"
)
