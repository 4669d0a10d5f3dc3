package catalog

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// DefaultFingerprint partitions entries requested without a credential.
const DefaultFingerprint = "default"

const fingerprintLength = 16

// Fingerprinter derives short one-way cache partition keys from API keys.
// It is not a security control; the optional secret only keeps fingerprints
// from being matched against known keys offline.
type Fingerprinter struct {
	secret []byte
}

// NewFingerprinter returns a fingerprinter keyed with secret (may be empty).
func NewFingerprinter(secret []byte) *Fingerprinter {
	if len(secret) > blake2b.Size {
		sum := blake2b.Sum256(secret)
		secret = sum[:]
	}
	return &Fingerprinter{secret: secret}
}

// Fingerprint returns DefaultFingerprint for a blank key, otherwise a
// fixed-length hex digest prefix.
func (f *Fingerprinter) Fingerprint(apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return DefaultFingerprint
	}

	var sum []byte
	h, err := blake2b.New256(f.secret)
	if err != nil {
		s := blake2b.Sum256(append(append([]byte{}, f.secret...), apiKey...))
		sum = s[:]
	} else {
		h.Write([]byte(apiKey))
		sum = h.Sum(nil)
	}
	return hex.EncodeToString(sum)[:fingerprintLength]
}

const minUsableKeyLength = 8

var (
	placeholderPrefixes = []string{"sk-test", "sk-placeholder", "sk-xxx", "sk-your"}
	placeholderTokens   = []string{
		"placeholder", "your_api_key", "your-api-key", "yourapikey",
		"changeme", "dummy", "example", "xxxxxxxx", "<", ">",
	}
)

// IsUsableKey reports whether apiKey looks like a real credential worth
// spending provider quota on. Blank, very short and obvious placeholder values
// are rejected.
func IsUsableKey(apiKey string) bool {
	k := strings.ToLower(strings.TrimSpace(apiKey))
	if len(k) < minUsableKeyLength {
		return false
	}
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(k, p) {
			return false
		}
	}
	for _, t := range placeholderTokens {
		if strings.Contains(k, t) {
			return false
		}
	}
	return true
}

// HasKey reports whether apiKey is non-blank.
func HasKey(apiKey string) bool {
	return strings.TrimSpace(apiKey) != ""
}
