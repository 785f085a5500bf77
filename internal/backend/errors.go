package backend

import "fmt"

// AuthError means the backend answered and rejected the credential. The
// credential is proven stale and callers must purge it.
type AuthError struct {
	Status int // HTTP status reported by the backend, for diagnostics
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("backend rejected credential (HTTP %d)", e.Status)
}

// TransportError means no usable response arrived: the network, not the
// credential, failed. Callers must NOT purge the credential; it may still be
// valid on the next attempt.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
