package model

// Role names as they appear in LTI role claims, reduced to their short form.
const (
	RoleLearner    = "Learner"
	RoleInstructor = "Instructor"
)

// DevUserID is the reserved sentinel subject used when the tool runs without
// a live LMS. Grade submission treats an identity carrying it as a local
// no-op; it must never be issued by a real launch.
const DevUserID = "Dev_User"

// IdentitySource records which launch path produced an identity. Backend
// validated identities are the only ones whose credential is known-good.
type IdentitySource string

const (
	// SourceBackend means the identity came from a successful /api/me
	// validation of an opaque session credential.
	SourceBackend IdentitySource = "backend"
	// SourceEmbeddedToken means the identity was decoded client-side from an
	// id_token without signature verification. Lower trust.
	SourceEmbeddedToken IdentitySource = "embedded-token"
	// SourceStandalone means the built-in demo identity.
	SourceStandalone IdentitySource = "standalone"
)

// Identity is the reconciled user identity bound to the session after a
// successful launch.
type Identity struct {
	UserID       string         `json:"user_id"`
	Roles        []string       `json:"roles"`
	ContextID    string         `json:"context_id"`
	ContextLabel string         `json:"context_label"`
	// SessionCredential is the opaque bearer token ("ltik") used for
	// subsequent authenticated calls. Empty for standalone and
	// embedded-token identities.
	SessionCredential string         `json:"-"`
	Source            IdentitySource `json:"source"`
}

// IsDev reports whether this is the reserved development identity.
func (id *Identity) IsDev() bool {
	return id.UserID == DevUserID
}

// Role returns the primary (first) role, defaulting to Learner.
func (id *Identity) Role() string {
	if len(id.Roles) == 0 {
		return RoleLearner
	}
	return id.Roles[0]
}

// DevIdentity returns the standalone/demo identity bound when no launch
// material is present. Distinguishable from any real launch by DevUserID.
func DevIdentity() *Identity {
	return &Identity{
		UserID:       DevUserID,
		Roles:        []string{RoleInstructor},
		ContextID:    "dev_env",
		ContextLabel: "Standalone Mode (No Backend)",
		Source:       SourceStandalone,
	}
}
