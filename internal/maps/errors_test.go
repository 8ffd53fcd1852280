package maps

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	const origin = "https://km.example.com"

	tests := []struct {
		name     string
		err      error
		wantKind error
		wantMsg  string
	}{
		{
			name:     "auth callback with blocked target",
			err:      &AuthFailure{Payload: "ApiTargetBlockedMapError"},
			wantKind: ErrAuthRestriction,
			wantMsg:  msgTargetBlocked,
		},
		{
			name:     "auth callback for referer",
			err:      &AuthFailure{Payload: "RefererNotAllowedMapError"},
			wantKind: ErrAuthRestriction,
			wantMsg:  `Google Maps API domain error. Add "https://km.example.com/*" to your API key restrictions in Google Cloud Console.`,
		},
		{
			name:     "script error mentioning blocked target",
			err:      errors.New("fetch script: status 403: ApiTargetBlockedMapError"),
			wantKind: ErrAuthRestriction,
			wantMsg:  msgTargetBlockedScript,
		},
		{
			name:     "script error mentioning api restrictions",
			err:      errors.New("This API key has API restrictions"),
			wantKind: ErrAuthRestriction,
			wantMsg:  msgTargetBlockedScript,
		},
		{
			name:     "generic network error",
			err:      errors.New("dial tcp: connection refused"),
			wantKind: ErrScriptLoad,
			wantMsg:  msgScriptLoad,
		},
		{
			name:     "wrapped auth failure",
			err:      fmt.Errorf("load: %w", &AuthFailure{Payload: "InvalidKeyMapError"}),
			wantKind: ErrAuthRestriction,
			wantMsg:  `Google Maps API domain error. Add "https://km.example.com/*" to your API key restrictions in Google Cloud Console.`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Classify(tt.err, origin)
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("kind: got %v, want %v", err, tt.wantKind)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
			if !errors.Is(err, tt.err) {
				t.Error("classified error should wrap the cause")
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	t.Parallel()

	if err := Classify(nil, "https://x"); err != nil {
		t.Errorf("Classify(nil) = %v", err)
	}
}

func TestClassify_AlreadyClassified(t *testing.T) {
	t.Parallel()

	le := &LoadError{Kind: ErrScriptLoad, Message: msgScriptLoad}
	if got := Classify(fmt.Errorf("outer: %w", le), ""); got != le {
		t.Errorf("Classify re-wrapped a LoadError: %v", got)
	}
}
