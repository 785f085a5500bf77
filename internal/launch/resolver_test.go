package launch

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/me/codelab/internal/credstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func classify(t *testing.T, store credstore.Store, raw string) Resolution {
	t.Helper()
	r := NewResolver(store, testLogger())
	res, err := r.Classify(mustParse(t, raw))
	if err != nil {
		t.Fatalf("Classify(%q): %v", raw, err)
	}
	return res
}

func TestClassifyOIDCInitiation(t *testing.T) {
	store := credstore.NewMemStore()
	res := classify(t, store, "https://tool.local/?iss=https%3A%2F%2Flms.example&login_hint=42")

	if res.Path != PathOIDCInitiation {
		t.Fatalf("Path = %q, want oidc_initiation", res.Path)
	}
	if res.Issuer != "https://lms.example" || res.LoginHint != "42" {
		t.Errorf("passthrough values = %q/%q", res.Issuer, res.LoginHint)
	}
}

// OIDC initiation wins over everything else, including a stale stored
// credential and launch material in the same URL.
func TestClassifyOIDCPrecedence(t *testing.T) {
	store := credstore.NewMemStore()
	store.Set("stale")

	res := classify(t, store,
		"https://tool.local/?iss=https%3A%2F%2Flms.example&login_hint=42&ltik=fresh&id_token=abc")

	if res.Path != PathOIDCInitiation {
		t.Fatalf("Path = %q, want oidc_initiation regardless of other params", res.Path)
	}
	// The stored credential is untouched by an initiation.
	if cred, _ := store.Get(); cred != "stale" {
		t.Errorf("stored credential = %q, want stale (untouched)", cred)
	}
}

func TestClassifyFreshCredentialPersistsAndStrips(t *testing.T) {
	store := credstore.NewMemStore()
	res := classify(t, store, "https://tool.local/app?ltik=tok123&view=editor")

	if res.Path != PathFreshCredential {
		t.Fatalf("Path = %q, want fresh_credential", res.Path)
	}
	if res.Credential != "tok123" {
		t.Errorf("Credential = %q, want tok123", res.Credential)
	}

	// Contract: credential persisted, URL rewritten without it.
	if cred, _ := store.Get(); cred != "tok123" {
		t.Errorf("store = %q, want tok123", cred)
	}
	clean := res.CleanURL.String()
	if strings.Contains(clean, "ltik") {
		t.Errorf("clean URL %q still carries the credential", clean)
	}
	if !strings.Contains(clean, "view=editor") {
		t.Errorf("clean URL %q lost unrelated params", clean)
	}
}

// Re-classifying the rewritten URL must yield the restored path: one
// resolution pass is idempotent.
func TestClassifyIdempotentAfterRewrite(t *testing.T) {
	store := credstore.NewMemStore()
	res := classify(t, store, "https://tool.local/?ltik=tok123")

	second, err := NewResolver(store, testLogger()).Classify(res.CleanURL)
	if err != nil {
		t.Fatalf("second Classify: %v", err)
	}
	if second.Path != PathRestoredCredential {
		t.Fatalf("second pass Path = %q, want restored_credential", second.Path)
	}
	if second.Credential != "tok123" {
		t.Errorf("second pass Credential = %q, want tok123", second.Credential)
	}
}

func TestClassifyFragmentCredential(t *testing.T) {
	store := credstore.NewMemStore()
	res := classify(t, store, "https://tool.local/#ltik=fragtok")

	if res.Path != PathFreshCredential {
		t.Fatalf("Path = %q, want fresh_credential from fragment", res.Path)
	}
	if res.Credential != "fragtok" {
		t.Errorf("Credential = %q, want fragtok", res.Credential)
	}
	if strings.Contains(res.CleanURL.String(), "fragtok") {
		t.Errorf("clean URL %q still carries the fragment credential", res.CleanURL)
	}
}

func TestClassifyQueryWinsOverFragment(t *testing.T) {
	store := credstore.NewMemStore()
	res := classify(t, store, "https://tool.local/?ltik=fromquery#ltik=fromfrag")

	if res.Credential != "fromquery" {
		t.Errorf("Credential = %q, want fromquery (query precedence)", res.Credential)
	}
}

func TestClassifyRestoredCredential(t *testing.T) {
	store := credstore.NewMemStore()
	store.Set("stored-tok")

	res := classify(t, store, "https://tool.local/")
	if res.Path != PathRestoredCredential {
		t.Fatalf("Path = %q, want restored_credential", res.Path)
	}
	if res.Credential != "stored-tok" {
		t.Errorf("Credential = %q, want stored-tok", res.Credential)
	}
}

// A fresh URL credential overwrites the stored one (single slot).
func TestClassifyFreshOverwritesStored(t *testing.T) {
	store := credstore.NewMemStore()
	store.Set("old")

	res := classify(t, store, "https://tool.local/?ltik=new")
	if res.Path != PathFreshCredential || res.Credential != "new" {
		t.Fatalf("got %q/%q, want fresh_credential/new", res.Path, res.Credential)
	}
	if cred, _ := store.Get(); cred != "new" {
		t.Errorf("store = %q, want new", cred)
	}
}

func TestClassifyEmbeddedToken(t *testing.T) {
	store := credstore.NewMemStore()
	res := classify(t, store, "https://tool.local/?id_token=eyJx.eyJ5.sig")

	if res.Path != PathEmbeddedToken {
		t.Fatalf("Path = %q, want embedded_token", res.Path)
	}
	if res.IDToken != "eyJx.eyJ5.sig" {
		t.Errorf("IDToken = %q", res.IDToken)
	}
}

// A stored credential outranks an id_token in the URL.
func TestClassifyStoredCredentialBeatsEmbeddedToken(t *testing.T) {
	store := credstore.NewMemStore()
	store.Set("stored-tok")

	res := classify(t, store, "https://tool.local/?id_token=abc")
	if res.Path != PathRestoredCredential {
		t.Fatalf("Path = %q, want restored_credential", res.Path)
	}
}

func TestClassifyStandalone(t *testing.T) {
	store := credstore.NewMemStore()

	for _, raw := range []string{
		"https://tool.local/",
		"https://tool.local/?view=editor&lang=js",
		"https://tool.local/#section",
	} {
		res := classify(t, store, raw)
		if res.Path != PathStandalone {
			t.Errorf("Classify(%q) = %q, want standalone", raw, res.Path)
		}
	}
}

// classify must return exactly one path and be stable for the same inputs.
func TestClassifyDeterministic(t *testing.T) {
	store := credstore.NewMemStore()
	store.Set("tok")
	raw := "https://tool.local/?id_token=abc"

	first := classify(t, store, raw)
	second := classify(t, store, raw)
	if first.Path != second.Path {
		t.Errorf("classification changed between calls: %q then %q", first.Path, second.Path)
	}
}
