package ingest

import "testing"

func TestCanonicalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases host", "https://WWW.NWO.NL/calls", "https://www.nwo.nl/calls"},
		{"drops fragment", "https://www.nwo.nl/calls#section", "https://www.nwo.nl/calls"},
		{"strips utm params", "https://www.nwo.nl/calls?utm_source=x&utm_medium=y&id=7", "https://www.nwo.nl/calls?id=7"},
		{"strips fbclid", "https://www.nwo.nl/calls?fbclid=abc", "https://www.nwo.nl/calls"},
		{"path case preserved", "https://www.nwo.nl/Calls/Veni", "https://www.nwo.nl/Calls/Veni"},
		{"garbage passes through", "://not a url", "://not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalizeURL(tt.in); got != tt.want {
				t.Errorf("CanonicalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, link, want string
	}{
		{"https://example.org/calls", "/call/1", "https://example.org/call/1"},
		{"https://example.org/calls/", "detail", "https://example.org/calls/detail"},
		{"https://example.org/calls", "https://other.org/x", "https://other.org/x"},
	}
	for _, tt := range tests {
		if got := resolveURL(tt.base, tt.link); got != tt.want {
			t.Errorf("resolveURL(%q, %q) = %q, want %q", tt.base, tt.link, got, tt.want)
		}
	}
}
