package app

import (
	"net/url"
	"testing"
)

func stateFromAuthURL(t *testing.T, authURL string) string {
	t.Helper()
	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	state := parsed.Query().Get("state")
	if state == "" {
		t.Fatalf("auth url carries no state: %s", authURL)
	}
	return state
}

func TestUserIDFromStateRoundTrip(t *testing.T) {
	t.Parallel()

	cc := NewCalendarClient("client-id", "client-secret", "https://example.com/oauth2callback", "state-secret")
	authURL, err := cc.AuthURL("2f1a4c9e-1111-2222-3333-444455556666")
	if err != nil {
		t.Fatalf("AuthURL returned error: %v", err)
	}

	got, ok := cc.UserIDFromState(stateFromAuthURL(t, authURL))
	if !ok {
		t.Fatal("signed state not recognized")
	}
	if got != "2f1a4c9e-1111-2222-3333-444455556666" {
		t.Fatalf("user id = %q, want uuid", got)
	}
}

func TestUserIDFromStateRejectsForgery(t *testing.T) {
	t.Parallel()

	cc := NewCalendarClient("client-id", "client-secret", "https://example.com/oauth2callback", "state-secret")

	// Unsigned or garbage states are refused outright.
	for _, state := range []string{"", "user_abc_123", "nope.nope.nope"} {
		if _, ok := cc.UserIDFromState(state); ok {
			t.Fatalf("state %q unexpectedly accepted", state)
		}
	}

	// A state signed under a different secret must not verify.
	other := NewCalendarClient("client-id", "client-secret", "https://example.com/oauth2callback", "other-secret")
	authURL, err := other.AuthURL("victim-user")
	if err != nil {
		t.Fatalf("AuthURL returned error: %v", err)
	}
	if _, ok := cc.UserIDFromState(stateFromAuthURL(t, authURL)); ok {
		t.Fatal("state signed with a different secret unexpectedly accepted")
	}
}

func TestNewCalendarClientRequiresAllCredentials(t *testing.T) {
	t.Parallel()

	if cc := NewCalendarClient("", "secret", "url", "state-secret"); cc != nil {
		t.Fatal("expected nil client without client id")
	}
	if cc := NewCalendarClient("id", "secret", "url", "state-secret"); cc == nil {
		t.Fatal("expected client with full credentials")
	}
}
