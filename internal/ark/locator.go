package ark

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Scheme is the URL scheme for archive locators.
const Scheme = "ark"

// KeyLength is the length of an archive key in hex characters.
const KeyLength = 64

// Locator identifies an archive by its public key.
type Locator struct {
	Key string // 64 lowercase hex characters
}

// URL returns the canonical scheme-prefixed form of the locator.
func (l Locator) URL() string {
	return Scheme + "://" + l.Key
}

// ParseLocator parses and normalizes an archive URL. Normalization strips
// exactly one trailing path separator, then any further path, query, or
// fragment suffix, keeping only scheme and key.
//
// Returns ErrInvalidScheme for a non-ark scheme and ErrInvalidArgument for
// empty input or a malformed key.
func ParseLocator(raw string) (Locator, error) {
	if raw == "" {
		return Locator{}, fmt.Errorf("%w: empty archive URL", ErrInvalidArgument)
	}

	rest, ok := strings.CutPrefix(raw, Scheme+"://")
	if !ok {
		return Locator{}, fmt.Errorf("%w: %q is not an %s:// URL", ErrInvalidScheme, raw, Scheme)
	}

	// One trailing slash is tolerated; anything beyond scheme + key
	// (paths, query strings, fragments) is dropped.
	rest = strings.TrimSuffix(rest, "/")
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}

	key := strings.ToLower(rest)
	if !validKey(key) {
		return Locator{}, fmt.Errorf("%w: archive key must be %d hex characters", ErrInvalidArgument, KeyLength)
	}

	return Locator{Key: key}, nil
}

// GenerateKey produces a fresh random archive key.
func GenerateKey() (string, error) {
	buf := make([]byte, KeyLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating archive key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func validKey(key string) bool {
	if len(key) != KeyLength {
		return false
	}
	for _, c := range key {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
