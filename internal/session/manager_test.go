package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tronix365/sensorbridge/internal/api"
	"go.uber.org/zap"
)

func newManager(t *testing.T, handler http.Handler) (*Manager, *TokenFile) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL)
	tokens := NewTokenFile(filepath.Join(t.TempDir(), "token"))
	mgr := NewManager(client, tokens, zap.NewNop())
	client.SetTokenSource(mgr)
	return mgr, tokens
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	json.NewEncoder(w).Encode(v)
}

func profileBody(email string, fullName *string) map[string]interface{} {
	return map[string]interface{}{
		"email":        email,
		"full_name":    fullName,
		"phone_number": nil,
	}
}

// expiredJWT builds an unsigned token whose exp claim lies in the past.
// The manager only reads claims locally, it never verifies signatures.
func expiredJWT(t *testing.T) string {
	t.Helper()

	header, _ := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	payload, _ := json.Marshal(map[string]int64{"exp": time.Now().Add(-time.Hour).Unix()})
	return fmt.Sprintf("%s.%s.",
		base64.RawURLEncoding.EncodeToString(header),
		base64.RawURLEncoding.EncodeToString(payload))
}

func TestLoginResolvesIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, profileBody("user@example.com", nil))
	})

	mgr, tokens := newManager(t, mux)

	if err := mgr.Login(context.Background(), "user@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	snap := mgr.Snapshot()
	if snap.Status != StatusAuthenticated {
		t.Errorf("Expected status %q, got %q", StatusAuthenticated, snap.Status)
	}
	if snap.Profile == nil || snap.Profile.Email != "user@example.com" {
		t.Error("Profile should be resolved after login")
	}
	if !snap.OnboardingRequired {
		t.Error("Empty full_name should require onboarding")
	}

	persisted, err := tokens.Load()
	if err != nil {
		t.Fatal(err)
	}
	if persisted != "tok-123" {
		t.Errorf("Expected token persisted for restarts, got %q", persisted)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, profileBody("user@example.com", nil))
	})

	mgr, tokens := newManager(t, mux)
	if err := mgr.Login(context.Background(), "user@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	mgr.Logout()

	if mgr.Token() != "" {
		t.Error("Token should be gone after logout")
	}
	snap := mgr.Snapshot()
	if snap.Status != StatusAnonymous || snap.Profile != nil {
		t.Errorf("Expected anonymous empty session, got %+v", snap)
	}
	if persisted, _ := tokens.Load(); persisted != "" {
		t.Error("Persisted token should be removed on logout")
	}
}

func TestRestoreWithoutPersistedToken(t *testing.T) {
	mgr, _ := newManager(t, http.NewServeMux())

	if err := mgr.Restore(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := mgr.Snapshot().Status; got != StatusAnonymous {
		t.Errorf("Expected %q without a stored token, got %q", StatusAnonymous, got)
	}
}

func TestRestoreRejectedTokenEndsAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	})

	mgr, tokens := newManager(t, mux)
	if err := tokens.Save("stale-token"); err != nil {
		t.Fatal(err)
	}

	// A rejected token is not a restore failure, it resolves to logged out.
	if err := mgr.Restore(context.Background()); err != nil {
		t.Fatalf("Expected nil for rejected token, got %v", err)
	}

	snap := mgr.Snapshot()
	if snap.Status != StatusAnonymous || snap.Profile != nil {
		t.Errorf("Expected logout end state, got %+v", snap)
	}
	if mgr.Token() != "" {
		t.Error("Rejected token must not stay attached")
	}
	if persisted, _ := tokens.Load(); persisted != "" {
		t.Error("Rejected token must be removed from disk")
	}
}

func TestRestoreSkipsLocallyExpiredToken(t *testing.T) {
	var meCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		writeJSON(w, profileBody("user@example.com", nil))
	})

	mgr, tokens := newManager(t, mux)
	if err := tokens.Save(expiredJWT(t)); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Restore(context.Background()); err != nil {
		t.Fatal(err)
	}

	if meCalls.Load() != 0 {
		t.Error("A locally expired token should skip the identity fetch")
	}
	if got := mgr.Snapshot().Status; got != StatusAnonymous {
		t.Errorf("Expected %q after expired restore, got %q", StatusAnonymous, got)
	}
}

func TestStaleIdentityResponseIsDiscarded(t *testing.T) {
	oldStarted := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"access_token": "tok-new"})
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer tok-old":
			close(oldStarted)
			<-release
			writeJSON(w, profileBody("old@example.com", nil))
		default:
			writeJSON(w, profileBody("new@example.com", nil))
		}
	})

	mgr, tokens := newManager(t, mux)
	if err := tokens.Save("tok-old"); err != nil {
		t.Fatal(err)
	}

	restoreDone := make(chan error, 1)
	go func() { restoreDone <- mgr.Restore(context.Background()) }()

	<-oldStarted

	// The login supersedes the token while the old identity fetch is still
	// in flight. Its late response must not overwrite the new identity.
	if err := mgr.Login(context.Background(), "user@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	close(release)
	if err := <-restoreDone; err != nil {
		t.Fatalf("Superseded restore should settle clean, got %v", err)
	}

	snap := mgr.Snapshot()
	if snap.Profile == nil || snap.Profile.Email != "new@example.com" {
		t.Errorf("Late response for the old token leaked into the session: %+v", snap.Profile)
	}
	if snap.Status != StatusAuthenticated {
		t.Errorf("Expected status %q, got %q", StatusAuthenticated, snap.Status)
	}
}

func TestUpdateProfileEndsOnboarding(t *testing.T) {
	name := "Jordan Doe"

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			fullName := body["full_name"]
			writeJSON(w, profileBody("user@example.com", &fullName))
			return
		}
		writeJSON(w, profileBody("user@example.com", nil))
	})

	mgr, _ := newManager(t, mux)
	if err := mgr.Login(context.Background(), "user@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	if !mgr.Snapshot().OnboardingRequired {
		t.Fatal("Precondition failed: onboarding should be required before the update")
	}

	if err := mgr.UpdateProfile(context.Background(), name, "+49 151 0000000"); err != nil {
		t.Fatal(err)
	}

	snap := mgr.Snapshot()
	if snap.OnboardingRequired {
		t.Error("Onboarding should be done once full_name is set")
	}
	if snap.Profile == nil || snap.Profile.FullName == nil || *snap.Profile.FullName != name {
		t.Error("Updated profile should be merged into the session")
	}
}

func TestOnChangeFiresOnTransitions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, profileBody("user@example.com", nil))
	})

	mgr, _ := newManager(t, mux)

	var got []Snapshot
	mgr.OnChange(func(s Snapshot) { got = append(got, s) })

	if err := mgr.Login(context.Background(), "user@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	mgr.Logout()

	if len(got) < 3 {
		t.Fatalf("Expected notifications for token set, identity and logout, got %d", len(got))
	}
	last := got[len(got)-1]
	if last.Status != StatusAnonymous {
		t.Errorf("Last notification should be the logout, got %q", last.Status)
	}
}
