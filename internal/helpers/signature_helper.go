package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateSignature returns the hex HMAC-SHA256 of the parts joined by ':'.
func GenerateSignature(secretKey string, parts ...string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h.Sum(nil))
}

func ValidateSignature(secretKey, signature string, parts ...string) bool {
	expected := GenerateSignature(secretKey, parts...)
	return hmac.Equal([]byte(expected), []byte(signature))
}
