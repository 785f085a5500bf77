// Package token structurally decodes LTI 1.3 identity tokens (compact JWS).
// No signature verification happens here: trust in a launch token is
// established by the backend that validated it server-side. This decode
// exists for the client-side embedded-token path only.
package token

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/me/codelab/pkg/model"
)

// LTI claim namespaces.
const (
	ClaimRoles    = "https://purl.imsglobal.org/spec/lti/claim/roles"
	ClaimContext  = "https://purl.imsglobal.org/spec/lti/claim/context"
	ClaimEndpoint = "https://purl.imsglobal.org/spec/lti-ags/claim/endpoint"
)

// fallbackContextLabel is displayed when the context claim has no label.
const fallbackContextLabel = "Unnamed Course"

var (
	// ErrMalformed means the raw string is not a decodable compact JWS.
	ErrMalformed = errors.New("malformed identity token")
	// ErrMissingSubject means the token decoded but carries no sub claim.
	ErrMissingSubject = errors.New("identity token missing subject")
)

// Claims holds the launch-relevant claims of a decoded identity token.
type Claims struct {
	Subject      string
	Issuer       string
	Roles        []string
	ContextID    string
	ContextLabel string
	// LineItem is the AGS endpoint asserted by the token. Informational:
	// the grading endpoint actually used is resolved backend-side, never
	// trusted from an unverified client-side decode.
	LineItem string
}

// Decode parses a compact JWS and extracts its launch claims without
// verifying the signature. A string that is not three base64url segments
// with a JSON payload fails with ErrMalformed; a decodable token without a
// subject fails with ErrMissingSubject.
func Decode(raw string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}

	c := &Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if c.Subject == "" {
		return nil, ErrMissingSubject
	}
	if iss, err := mc.GetIssuer(); err == nil {
		c.Issuer = iss
	}

	if roles, ok := mc[ClaimRoles].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && s != "" {
				c.Roles = append(c.Roles, s)
			}
		}
	}

	if lctx, ok := mc[ClaimContext].(map[string]any); ok {
		c.ContextID, _ = lctx["id"].(string)
		c.ContextLabel, _ = lctx["label"].(string)
	}

	if ep, ok := mc[ClaimEndpoint].(map[string]any); ok {
		c.LineItem, _ = ep["lineitem"].(string)
	}

	return c, nil
}

// IssuerRecognized reports whether iss matches one of the known platform
// origins or is at least a well-formed http(s) URL. An unrecognized issuer
// is a soft validation concern for the caller to log, never a decode
// failure.
func IssuerRecognized(iss string, known []string) bool {
	for _, k := range known {
		if iss == k {
			return true
		}
	}
	u, err := url.Parse(iss)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Identity builds the reconciled identity for an embedded-token launch.
// The roles claim contributes its first element, defaulting to Learner;
// context fields fall back to display placeholders. The identity carries no
// session credential and is marked as lower-trust by its source.
func (c *Claims) Identity() *model.Identity {
	role := model.RoleLearner
	if len(c.Roles) > 0 {
		role = c.Roles[0]
	}

	contextID := c.ContextID
	if contextID == "" {
		contextID = "unknown_course"
	}
	label := strings.TrimSpace(c.ContextLabel)
	if label == "" {
		label = fallbackContextLabel
	}

	return &model.Identity{
		UserID:       c.Subject,
		Roles:        []string{role},
		ContextID:    contextID,
		ContextLabel: label,
		Source:       model.SourceEmbeddedToken,
	}
}
