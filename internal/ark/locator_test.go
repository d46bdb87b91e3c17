package ark_test

import (
	"errors"
	"strings"
	"testing"

	"ark-go/internal/ark"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr error
	}{
		{name: "canonical url", raw: "ark://" + testKey, wantKey: testKey},
		{name: "uppercase key is lowered", raw: "ark://" + strings.ToUpper(testKey), wantKey: testKey},
		{name: "one trailing slash tolerated", raw: "ark://" + testKey + "/", wantKey: testKey},
		{name: "path suffix dropped", raw: "ark://" + testKey + "/some/file.txt", wantKey: testKey},
		{name: "query suffix dropped", raw: "ark://" + testKey + "?v=3", wantKey: testKey},
		{name: "fragment suffix dropped", raw: "ark://" + testKey + "#top", wantKey: testKey},
		{name: "empty input", raw: "", wantErr: ark.ErrInvalidArgument},
		{name: "wrong scheme", raw: "https://" + testKey, wantErr: ark.ErrInvalidScheme},
		{name: "no scheme", raw: testKey, wantErr: ark.ErrInvalidScheme},
		{name: "short key", raw: "ark://abc123", wantErr: ark.ErrInvalidArgument},
		{name: "non-hex key", raw: "ark://" + strings.Repeat("z", 64), wantErr: ark.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ark.ParseLocator(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseLocator(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLocator(%q) error = %v", tt.raw, err)
			}
			if loc.Key != tt.wantKey {
				t.Errorf("ParseLocator(%q).Key = %q, want %q", tt.raw, loc.Key, tt.wantKey)
			}
		})
	}
}

func TestLocator_URL(t *testing.T) {
	loc := ark.Locator{Key: testKey}
	want := "ark://" + testKey
	if loc.URL() != want {
		t.Errorf("URL() = %q, want %q", loc.URL(), want)
	}

	// Round trip.
	parsed, err := ark.ParseLocator(loc.URL())
	if err != nil {
		t.Fatalf("ParseLocator(URL()) error = %v", err)
	}
	if parsed != loc {
		t.Errorf("round trip = %+v, want %+v", parsed, loc)
	}
}

func TestGenerateKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		key, err := ark.GenerateKey()
		if err != nil {
			t.Fatalf("GenerateKey() error = %v", err)
		}
		if len(key) != ark.KeyLength {
			t.Fatalf("GenerateKey() length = %d, want %d", len(key), ark.KeyLength)
		}
		if _, err := ark.ParseLocator("ark://" + key); err != nil {
			t.Fatalf("generated key does not parse: %v", err)
		}
		if seen[key] {
			t.Fatal("GenerateKey() produced a duplicate")
		}
		seen[key] = true
	}
}
