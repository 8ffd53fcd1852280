package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kmtracker/kmtracker/internal/auth"
)

func newAccountService(t *testing.T) (*AccountService, *auth.TokenIssuer) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return NewAccountService(newMemStore(), issuer, nil), issuer
}

func TestAccountService_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc, issuer := newAccountService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "  Driver@Example.com ", "long-enough-pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "driver@example.com" {
		t.Errorf("email not normalized: %q", reg.User.Email)
	}

	ac, err := issuer.Parse(reg.Token)
	if err != nil || ac.UserID != reg.User.ID {
		t.Fatalf("token does not carry the user: %+v, %v", ac, err)
	}

	login, err := svc.Login(ctx, "DRIVER@example.com", "long-enough-pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Error("login returned another user")
	}
}

func TestAccountService_RegisterErrors(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "long-enough-pw"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad email err = %v", err)
	}
	if _, err := svc.Register(ctx, "a@example.com", "short"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("short password err = %v", err)
	}

	if _, err := svc.Register(ctx, "a@example.com", "long-enough-pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "A@example.com", "another-password"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate err = %v, want ErrEmailExists", err)
	}
}

func TestAccountService_LoginFailures(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "a@example.com", "long-enough-pw"); err != nil {
		t.Fatal(err)
	}

	for _, c := range []struct{ email, password string }{
		{"a@example.com", "wrong-password"},
		{"nobody@example.com", "long-enough-pw"},
		{"", ""},
	} {
		if _, err := svc.Login(ctx, c.email, c.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q) err = %v, want ErrInvalidCredentials", c.email, err)
		}
	}
}
