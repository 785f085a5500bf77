// Package launch implements the LTI 1.3 launch-and-session protocol state
// machine: classifying how the tool was entered, validating or decoding the
// launch material, and reconciling the result into the one process-wide
// session.
package launch

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/me/codelab/internal/credstore"
)

// Path classifies how the tool was entered.
type Path string

const (
	// PathOIDCInitiation is the first leg of the external auth handshake:
	// iss and login_hint are both present in the query.
	PathOIDCInitiation Path = "oidc_initiation"
	// PathFreshCredential means an opaque credential arrived in the URL
	// (query or fragment) and was captured into the store.
	PathFreshCredential Path = "fresh_credential"
	// PathRestoredCredential means no credential in the URL but one
	// survives in the store from a previous visit.
	PathRestoredCredential Path = "restored_credential"
	// PathEmbeddedToken means an id_token parameter is present and will be
	// decoded client-side. Fallback path, lower trust.
	PathEmbeddedToken Path = "embedded_token"
	// PathStandalone means none of the above: run disconnected on the demo
	// identity.
	PathStandalone Path = "standalone"
)

// URL parameter names at the protocol boundary.
const (
	paramIssuer     = "iss"
	paramLoginHint  = "login_hint"
	paramCredential = "ltik"
	paramIDToken    = "id_token"
)

// Resolution is the outcome of classifying one visit.
type Resolution struct {
	Path       Path
	Credential string // set for the credential paths
	IDToken    string // set for the embedded-token path
	LoginHint  string // set for the OIDC initiation path
	Issuer     string // set for the OIDC initiation path
	// CleanURL is the visit URL with any consumed credential parameter
	// removed. The caller applies it with a history-replacing rewrite so
	// back-navigation cannot resurrect the raw credential.
	CleanURL *url.URL
}

// Resolver classifies a visit from its URL and the credential store.
type Resolver struct {
	store  credstore.Store
	logger *slog.Logger
}

// NewResolver creates a resolver over the given credential store.
func NewResolver(store credstore.Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With("component", "resolver"),
	}
}

// Classify inspects the URL and store and returns exactly one path, checked
// in fixed precedence order: OIDC initiation, fresh credential, restored
// credential, embedded token, standalone. An initiation request wins over
// everything else because it must hand off to the external authority even
// when a stale credential is still stored. A fresh credential is persisted
// as a side effect of classification and stripped from CleanURL.
func (r *Resolver) Classify(u *url.URL) (Resolution, error) {
	query := u.Query()
	fragment := fragmentValues(u)

	res := Resolution{CleanURL: u}

	// 1. OIDC initiation: iss + login_hint both present.
	if query.Has(paramIssuer) && query.Has(paramLoginHint) {
		res.Path = PathOIDCInitiation
		res.Issuer = query.Get(paramIssuer)
		res.LoginHint = query.Get(paramLoginHint)
		return res, nil
	}

	// 2. Fresh credential in the URL; query wins over fragment.
	if cred := firstOf(query, fragment, paramCredential); cred != "" {
		if err := r.store.Set(cred); err != nil {
			return res, fmt.Errorf("persist credential: %w", err)
		}
		r.logger.Debug("captured fresh credential from URL")
		res.Path = PathFreshCredential
		res.Credential = cred
		res.CleanURL = stripParam(u, paramCredential)
		return res, nil
	}

	// 3. Restored credential from the store.
	stored, err := r.store.Get()
	if err != nil {
		return res, fmt.Errorf("read credential store: %w", err)
	}
	if stored != "" {
		res.Path = PathRestoredCredential
		res.Credential = stored
		return res, nil
	}

	// 4. Embedded identity token for the client-side decode path.
	if tok := firstOf(query, fragment, paramIDToken); tok != "" {
		res.Path = PathEmbeddedToken
		res.IDToken = tok
		return res, nil
	}

	// 5. Nothing recognized: standalone.
	res.Path = PathStandalone
	return res, nil
}

// fragmentValues parses the URL fragment as query parameters. Auth
// redirects using fragment response mode deliver parameters there.
func fragmentValues(u *url.URL) url.Values {
	if u.Fragment == "" {
		return url.Values{}
	}
	vals, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return url.Values{}
	}
	return vals
}

// firstOf returns the named parameter from the query, falling back to the
// fragment.
func firstOf(query, fragment url.Values, name string) string {
	if v := query.Get(name); v != "" {
		return v
	}
	return fragment.Get(name)
}

// stripParam returns a copy of u with the named parameter removed from both
// the query string and the fragment.
func stripParam(u *url.URL, name string) *url.URL {
	clean := *u

	q := clean.Query()
	q.Del(name)
	clean.RawQuery = q.Encode()

	if frag := fragmentValues(&clean); frag.Has(name) {
		frag.Del(name)
		clean.Fragment = frag.Encode()
		clean.RawFragment = ""
	}

	return &clean
}
