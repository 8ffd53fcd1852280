package maps

import "testing"

func TestPlaceLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		place Place
		want  string
	}{
		{
			name:  "business",
			place: Place{Name: "Bunnings", FormattedAddress: "1 Main Rd, Sunshine VIC", Types: []string{"hardware_store", "store"}},
			want:  "Bunnings, 1 Main Rd, Sunshine VIC",
		},
		{
			name:  "street address",
			place: Place{Name: "1 Main Rd", FormattedAddress: "1 Main Rd, Sunshine VIC", Types: []string{"street_address"}},
			want:  "1 Main Rd, Sunshine VIC",
		},
		{
			name:  "business without name",
			place: Place{FormattedAddress: "Royal Melbourne Hospital", Types: []string{"hospital"}},
			want:  "Royal Melbourne Hospital",
		},
		{
			name:  "no types",
			place: Place{Name: "Somewhere", FormattedAddress: "2 High St"},
			want:  "2 High St",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := PlaceLabel(tt.place); got != tt.want {
				t.Errorf("PlaceLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClientConfig(t *testing.T) {
	t.Parallel()

	off := NewClientConfig("", "", "")
	if off.Enabled || off.ScriptURL != "" {
		t.Errorf("expected disabled config, got %+v", off)
	}
	if off.Country != "au" {
		t.Errorf("Country = %q", off.Country)
	}

	on := NewClientConfig("", "k", "")
	if !on.Enabled || on.Callback != "initMap" || on.ScriptURL == "" {
		t.Errorf("unexpected config %+v", on)
	}
}
