package cliconfig

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	prev := configPath
	configPath = func() (string, error) { return path, nil }
	t.Cleanup(func() { configPath = prev })
	return path
}

func TestSaveLoad(t *testing.T) {
	useTempConfig(t)

	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	cfg := &CLIConfig{}
	cfg.SetCredential("localhost:8080", &Credential{Token: "abc", Username: "ash", ExpiresAt: expires})

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("loaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Missing(t *testing.T) {
	useTempConfig(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetCredential(t *testing.T) {
	cfg := &CLIConfig{}
	cfg.SetCredential("valid:8080", &Credential{Token: "a", ExpiresAt: time.Now().Add(time.Hour)})
	cfg.SetCredential("expired:8080", &Credential{Token: "b", ExpiresAt: time.Now().Add(-time.Hour)})
	cfg.SetCredential("forever:8080", &Credential{Token: "c"})

	tests := []struct {
		name      string
		server    string
		wantToken string
		wantErr   error
	}{
		{name: "valid", server: "http://valid:8080", wantToken: "a"},
		{name: "expired", server: "http://expired:8080", wantErr: ErrCredentialExpired},
		{name: "no expiry", server: "https://forever:8080/api", wantToken: "c"},
		{name: "unknown host", server: "http://other:8080", wantErr: ErrCredentialNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := cfg.GetCredential(tt.server)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cred.Token != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, cred.Token)
			}
		})
	}
}
