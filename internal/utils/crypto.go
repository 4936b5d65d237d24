package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecureCode returns a 32-byte random value, URL-safe encoded.
// Used for API key secrets.
func GenerateSecureCode() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
