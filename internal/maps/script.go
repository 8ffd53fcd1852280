package maps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultScriptBaseURL is the Maps JavaScript API endpoint.
	DefaultScriptBaseURL = "https://maps.googleapis.com/maps/api/js"
	// DefaultCallback is the global function the SDK calls once loaded.
	DefaultCallback = "initMap"
	// AutocompleteCountry restricts place autocomplete to Australia.
	AutocompleteCountry = "au"

	maxScriptBytes = 4 << 20
)

// Libraries requested from the SDK.
var Libraries = []string{"places"}

// mapErrorPattern matches the error codes the SDK embeds for key problems,
// e.g. RefererNotAllowedMapError or ApiTargetBlockedMapError.
var mapErrorPattern = regexp.MustCompile(`[A-Z][A-Za-z]+MapError`)

// ScriptURL builds the SDK script URL for an API key.
func ScriptURL(baseURL, apiKey, callback string) string {
	if baseURL == "" {
		baseURL = DefaultScriptBaseURL
	}
	if callback == "" {
		callback = DefaultCallback
	}
	q := url.Values{}
	q.Set("key", apiKey)
	q.Set("libraries", strings.Join(Libraries, ","))
	q.Set("callback", callback)
	return baseURL + "?" + q.Encode()
}

// ScriptAdapter loads the SDK by fetching its script the way a browser would,
// sending the public origin as referer so key restrictions apply.
type ScriptAdapter struct {
	client  *http.Client
	url     string
	referer string
}

// NewScriptAdapter creates a ScriptAdapter. baseURL may be empty for the default endpoint.
func NewScriptAdapter(baseURL, apiKey, callback, origin string) *ScriptAdapter {
	return &ScriptAdapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		url:     ScriptURL(baseURL, apiKey, callback),
		referer: strings.TrimSuffix(origin, "/") + "/",
	}
}

// Load fetches the script once.
func (a *ScriptAdapter) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return fmt.Errorf("create script request: %w", err)
	}
	req.Header.Set("Referer", a.referer)
	req.Header.Set("Accept", "*/*")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch script: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBytes))
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("fetch script: status %d: %s", resp.StatusCode, snippet(body))
	}

	if code := mapErrorPattern.Find(body); code != nil {
		return &AuthFailure{Payload: string(code)}
	}

	return nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
