package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomSecret returns size bytes of entropy, URL-safe encoded. Used as the
// signing key when none is configured.
func RandomSecret(size int) (string, error) {
	if size <= 0 {
		size = 32
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: entropy read failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
