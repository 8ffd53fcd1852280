package auth

import (
	"context"
	"testing"

	"github.com/kmtracker/kmtracker/internal/model"
)

func TestAuthContextRoundTrip(t *testing.T) {
	t.Parallel()

	if got := UserIDFromContext(context.Background()); got != "" {
		t.Errorf("anonymous user id = %q", got)
	}

	ctx := ContextWithAuth(context.Background(), &model.AuthContext{UserID: "u1", Email: "a@b.c"})
	if got := UserIDFromContext(ctx); got != "u1" {
		t.Errorf("user id = %q", got)
	}
	if ac := AuthFromContext(ctx); ac == nil || ac.Email != "a@b.c" {
		t.Errorf("auth = %+v", ac)
	}
}
