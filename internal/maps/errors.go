package maps

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Match with errors.Is on any error returned by the loader.
var (
	ErrScriptLoad      = errors.New("maps script load failed")
	ErrAuthRestriction = errors.New("maps api key restriction")
)

// User-facing messages.
const (
	msgScriptLoad          = "Failed to load Google Maps API script."
	msgTargetBlocked       = "ApiTargetBlockedMapError: Your API key has incorrect API restrictions. Please configure API restrictions to allow Maps JavaScript API, Places API, and Distance Matrix API."
	msgTargetBlockedScript = "ApiTargetBlockedMapError: Your API key has incorrect API restrictions configured."
	msgDomainFormat        = `Google Maps API domain error. Add "%s/*" to your API key restrictions in Google Cloud Console.`
)

// LoadError is a classified loader failure. Message is safe to show to users.
type LoadError struct {
	Kind    error
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return e.Message
}

// Is matches the failure kind.
func (e *LoadError) Is(target error) bool {
	return target == e.Kind
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// AuthFailure is returned by an Adapter when the SDK rejected the API key.
// Payload is whatever the SDK reported (URL, body fragment, error code).
type AuthFailure struct {
	Payload string
}

func (e *AuthFailure) Error() string {
	return "maps authentication failed: " + e.Payload
}

// Classify turns an adapter error into a LoadError. origin is the public origin
// that must be whitelisted on the key. A nil error stays nil.
func Classify(err error, origin string) error {
	if err == nil {
		return nil
	}

	var le *LoadError
	if errors.As(err, &le) {
		return le
	}

	var af *AuthFailure
	if errors.As(err, &af) {
		return ClassifyAuthPayload(af.Payload, origin, err)
	}

	if isTargetBlocked(err.Error()) {
		return &LoadError{Kind: ErrAuthRestriction, Message: msgTargetBlockedScript, Err: err}
	}
	return &LoadError{Kind: ErrScriptLoad, Message: msgScriptLoad, Err: err}
}

// ClassifyAuthPayload classifies an authentication failure reported by the SDK.
func ClassifyAuthPayload(payload, origin string, cause error) *LoadError {
	if cause == nil {
		cause = &AuthFailure{Payload: payload}
	}
	if isTargetBlocked(payload) {
		return &LoadError{Kind: ErrAuthRestriction, Message: msgTargetBlocked, Err: cause}
	}
	return &LoadError{
		Kind:    ErrAuthRestriction,
		Message: fmt.Sprintf(msgDomainFormat, strings.TrimSuffix(origin, "/")),
		Err:     cause,
	}
}

func isTargetBlocked(s string) bool {
	return strings.Contains(s, "ApiTargetBlockedMapError") ||
		strings.Contains(s, "API restrictions") ||
		strings.Contains(s, "blocked")
}
