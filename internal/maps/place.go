package maps

import (
	"slices"
	"strings"
)

// Place is an autocomplete selection as reported by the Places library.
type Place struct {
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
}

var businessTypes = []string{
	"establishment",
	"point_of_interest",
	"store",
	"restaurant",
	"lodging",
	"hospital",
	"school",
	"university",
}

// PlaceLabel returns the address string stored for a selection. Businesses are
// prefixed with their name so the trip log reads "Name, address".
func PlaceLabel(p Place) string {
	name := strings.TrimSpace(p.Name)
	addr := strings.TrimSpace(p.FormattedAddress)

	if name != "" && isBusiness(p.Types) {
		return name + ", " + addr
	}
	return addr
}

func isBusiness(types []string) bool {
	for _, t := range types {
		if slices.Contains(businessTypes, t) {
			return true
		}
	}
	return false
}

// ClientConfig is what a browser needs to load the SDK itself.
type ClientConfig struct {
	Enabled   bool     `json:"enabled"`
	ScriptURL string   `json:"script_url,omitempty"`
	Callback  string   `json:"callback,omitempty"`
	Libraries []string `json:"libraries,omitempty"`
	Country   string   `json:"country"`
}

// NewClientConfig builds the client configuration. An empty key disables the SDK.
func NewClientConfig(baseURL, apiKey, callback string) ClientConfig {
	if apiKey == "" {
		return ClientConfig{Country: AutocompleteCountry}
	}
	if callback == "" {
		callback = DefaultCallback
	}
	return ClientConfig{
		Enabled:   true,
		ScriptURL: ScriptURL(baseURL, apiKey, callback),
		Callback:  callback,
		Libraries: Libraries,
		Country:   AutocompleteCountry,
	}
}
