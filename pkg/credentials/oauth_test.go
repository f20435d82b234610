package credentials

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/askehill/covis2/pkg/errorsx"
)

func writeCreds(t *testing.T, tokenURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	raw, _ := json.Marshal(map[string]any{
		"client_id":     "client-1",
		"client_secret": "secret",
		"refresh_token": "refresh-1",
		"token_uri":     tokenURL,
		"scopes":        []string{"https://www.googleapis.com/auth/assistant-sdk-prototype"},
	})
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	return path
}

func TestLoadRefreshesEagerly(t *testing.T) {
	var refreshed bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshed = true
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("refresh_token") != "refresh-1" {
			t.Fatalf("unexpected refresh token %q", r.Form.Get("refresh_token"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	source, err := Load(context.Background(), writeCreds(t, ts.URL), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !refreshed {
		t.Fatalf("expected an eager refresh at load time")
	}

	token, err := source.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token.AccessToken != "at-1" {
		t.Fatalf("unexpected access token %q", token.AccessToken)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"), nil)
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errorsx.HasReason(err, errorsx.ReasonCredentialsLoad) {
		t.Fatalf("expected credentials_load reason, got %s", errorsx.Reason(err))
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{oops"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(context.Background(), path, nil); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}

func TestLoadIncompleteCredentialsFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(`{"client_id":"c"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(context.Background(), path, nil)
	if !errorsx.HasReason(err, errorsx.ReasonCredentialsLoad) {
		t.Fatalf("expected credentials_load reason, got %v", err)
	}
}

func TestLoadRefreshFailureFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := Load(context.Background(), writeCreds(t, ts.URL), nil)
	if !errorsx.HasReason(err, errorsx.ReasonCredentialsRefresh) {
		t.Fatalf("expected credentials_refresh reason, got %v", err)
	}
}
