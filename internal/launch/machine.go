package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/me/codelab/internal/backend"
	"github.com/me/codelab/internal/credstore"
	"github.com/me/codelab/internal/token"
	"github.com/me/codelab/pkg/model"
)

// Validator confirms a candidate credential against the backend identity
// endpoint and returns the canonical session record.
type Validator interface {
	Validate(ctx context.Context, credential string) (*model.Identity, error)
}

// Machine sequences one launch: classify the visit, then validate, decode,
// or fall back, and bind the result to the session. It is the only writer
// of Session.Connected and Session.Identity.
type Machine struct {
	mu        sync.Mutex
	resolver  *Resolver
	validator Validator
	store     credstore.Store
	session   *model.Session
	phase     model.LaunchPhase
	message   string // user-displayable transitional or diagnostic text
	issuers   []string
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures optional Machine behavior.
type Option func(*Machine)

// WithIssuers sets the platform issuers recognized by the soft issuer check
// on the embedded-token path.
func WithIssuers(issuers []string) Option {
	return func(m *Machine) {
		m.issuers = issuers
	}
}

// WithTimeout bounds each backend validation call. Without a bound an
// unresponsive backend would leave the launch stuck in ValidatingLaunch
// with no escape except restarting.
func WithTimeout(d time.Duration) Option {
	return func(m *Machine) {
		m.timeout = d
	}
}

// NewMachine creates a launch machine over the given store and validator.
// The session starts disconnected in the Idle phase.
func NewMachine(store credstore.Store, validator Validator, logger *slog.Logger, opts ...Option) *Machine {
	m := &Machine{
		resolver:  NewResolver(store, logger),
		validator: validator,
		store:     store,
		session:   model.NewSession(),
		phase:     model.PhaseIdle,
		timeout:   10 * time.Second,
		logger:    logger.With("component", "launch"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the process-wide session. Consumers read it; only this
// machine and the grade submitter mutate it.
func (m *Machine) Session() *model.Session {
	return m.session
}

// Phase returns the current launch phase.
func (m *Machine) Phase() model.LaunchPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Message returns the current user-displayable status or diagnostic text.
func (m *Machine) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// Launch runs one full launch sequence for the visit URL and returns the
// resolution (including the credential-stripped URL for the caller's
// history rewrite). On failure the machine is left in the Error phase with
// a diagnostic message; only re-entry with a fresh launch URL recovers it.
func (m *Machine) Launch(ctx context.Context, u *url.URL) (Resolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.resolver.Classify(u)
	if err != nil {
		m.fail("Could not inspect the launch request.")
		return res, err
	}
	m.logger.Info("launch classified", "path", string(res.Path))

	switch res.Path {
	case PathOIDCInitiation:
		// Hand off to the external authority; no session mutation. The
		// platform will re-enter with a real launch.
		m.phase = model.PhaseAwaitingExternalLogin
		m.message = "Redirecting to the platform for sign-in..."
		return res, nil

	case PathFreshCredential, PathRestoredCredential:
		return res, m.validate(ctx, res.Credential)

	case PathEmbeddedToken:
		return res, m.decodeEmbedded(res.IDToken)

	case PathStandalone:
		m.session.Bind(model.DevIdentity())
		m.phase = model.PhaseIdle
		m.message = ""
		m.logger.Info("no launch material found, running standalone",
			"user", model.DevUserID)
		return res, nil
	}

	m.fail("Unrecognized launch path.")
	return res, fmt.Errorf("unrecognized launch path %q", res.Path)
}

// validate confirms the credential with the backend and binds the returned
// identity. A backend rejection proves the credential stale, so it is
// purged; a transport failure leaves it in place so a reload can retry.
func (m *Machine) validate(ctx context.Context, credential string) error {
	m.phase = model.PhaseValidatingLaunch
	m.message = "Validating session..."

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	identity, err := m.validator.Validate(ctx, credential)
	if err == nil {
		m.session.Bind(identity)
		m.phase = model.PhaseIdle
		m.message = ""
		m.logger.Info("session validated",
			"user", identity.UserID, "context", identity.ContextID)
		return nil
	}

	var authErr *backend.AuthError
	if errors.As(err, &authErr) {
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("failed to purge rejected credential", "error", clearErr)
		}
		m.fail(fmt.Sprintf("Session rejected by the backend (HTTP %d). Relaunch from your course.", authErr.Status))
		return err
	}

	// Transport-level failure (includes the validation timeout): the
	// credential may still be valid, keep it for retry on the next launch.
	m.fail("Could not reach the backend. Check your connection and reload.")
	return err
}

// decodeEmbedded builds an identity from an id_token by structural decode
// alone. No backend round-trip; the resulting identity is marked as coming
// from the lower-trust embedded-token path.
func (m *Machine) decodeEmbedded(raw string) error {
	m.phase = model.PhaseValidatingLaunch
	m.message = "Processing launch token..."

	claims, err := token.Decode(raw)
	if err != nil {
		m.fail("The launch token could not be decoded. Relaunch from your course.")
		return err
	}

	if !token.IssuerRecognized(claims.Issuer, m.issuers) {
		// Soft concern only: log and continue.
		m.logger.Warn("unrecognized token issuer", "issuer", claims.Issuer)
	}

	m.session.Bind(claims.Identity())
	m.phase = model.PhaseIdle
	m.message = ""
	m.logger.Info("embedded token accepted",
		"user", claims.Subject, "context", claims.ContextID)
	return nil
}

// fail moves the machine to the terminal Error phase. The session stays
// disconnected; the message is surfaced so the student is never stuck
// without feedback.
func (m *Machine) fail(message string) {
	m.phase = model.PhaseError
	m.message = message
	m.logger.Error("launch failed", "message", message)
}
