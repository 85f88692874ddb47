package apikey

import (
	"context"
	"strings"
	"testing"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type fakeApps map[string]*repository.App

func (f fakeApps) Get(_ context.Context, id string) (*repository.App, error) {
	app, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return app, nil
}

func TestGenerate_KeyShapeAndHash(t *testing.T) {
	plain, phc, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(plain, Prefix) {
		t.Fatalf("key %q missing prefix %q", plain, Prefix)
	}
	// 32 bytes base64url sin padding = 43 chars.
	if got := len(plain) - len(Prefix); got != 43 {
		t.Fatalf("key entropy part is %d chars, want 43", got)
	}
	if !strings.HasPrefix(phc, "$argon2id$") {
		t.Fatalf("hash %q is not a PHC argon2id string", phc)
	}
	if strings.Contains(phc, plain) {
		t.Fatal("plaintext leaked into the stored hash")
	}
}

func TestAuthenticate(t *testing.T) {
	plain, phc, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	apps := fakeApps{
		"app-ok":       {ID: "app-ok", APIKeyHash: &phc, IsEnabled: true},
		"app-disabled": {ID: "app-disabled", APIKeyHash: &phc, IsEnabled: false},
		"app-nokey":    {ID: "app-nokey", IsEnabled: true},
	}
	auth := NewAuthenticator(apps)
	ctx := context.Background()

	app, err := auth.Authenticate(ctx, "app-ok", plain)
	if err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}
	if app.ID != "app-ok" {
		t.Fatalf("got app %q", app.ID)
	}

	// Every failure mode returns the same generic error.
	cases := []struct {
		name, appID, key string
	}{
		{"unknown app", "missing", plain},
		{"wrong key", "app-ok", Prefix + strings.Repeat("x", 43)},
		{"disabled app", "app-disabled", plain},
		{"no key generated", "app-nokey", plain},
		{"empty key", "app-ok", ""},
		{"empty app id", "", plain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := auth.Authenticate(ctx, tc.appID, tc.key); err != ErrInvalidCredentials {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

// Regeneration invalidates the previous key.
func TestRegenerate_OldKeyUnusable(t *testing.T) {
	oldPlain, oldPHC, _ := Generate()
	app := &repository.App{ID: "app-1", APIKeyHash: &oldPHC, IsEnabled: true}
	auth := NewAuthenticator(fakeApps{"app-1": app})
	ctx := context.Background()

	if _, err := auth.Authenticate(ctx, "app-1", oldPlain); err != nil {
		t.Fatalf("old key should work before rotation: %v", err)
	}

	newPlain, newPHC, _ := Generate()
	app.APIKeyHash = &newPHC

	if _, err := auth.Authenticate(ctx, "app-1", oldPlain); err != ErrInvalidCredentials {
		t.Fatalf("old key must be rejected after rotation, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "app-1", newPlain); err != nil {
		t.Fatalf("new key rejected: %v", err)
	}
}
