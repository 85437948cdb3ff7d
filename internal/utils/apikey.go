package utils

import (
	"crypto/rand"  // Secure random source
	"encoding/hex" // Hex encoding

	"golang.org/x/crypto/bcrypt" // API key hashing
)

// apiKeyBytes is the number of random bytes in an API key, hex encoded to twice as many characters
const apiKeyBytes = 32

// GenerateAPIKey creates a new opaque random API key
func GenerateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashAPIKey hashes an API key for storage
func HashAPIKey(key string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAPIKey reports whether key matches the stored hash
func CheckAPIKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
