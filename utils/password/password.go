// Package password implements the account secret hashing scheme: a random
// per-password salt and SHA-256 over the hex-encoded salt followed by the
// secret bytes, persisted as "hex(salt)$hex(hash)".
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const saltLength = 16

// Hash hashes a password with a freshly generated random salt. Two hashes of
// the same password never compare equal.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	saltHex := hex.EncodeToString(salt)
	return saltHex + "$" + hashWithSalt(password, saltHex), nil
}

// Verify checks a password against a stored "salt$hash" value. Malformed
// stored values verify as false, never as an error.
func Verify(password, storedHash string) bool {
	parts := strings.Split(storedHash, "$")
	if len(parts) != 2 {
		return false
	}
	return parts[1] == hashWithSalt(password, parts[0])
}

// NormalizeAnswer prepares a security-question answer for hashing or
// verification: case-folded and trimmed, so "  Rex " and "rex" match.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func hashWithSalt(password, saltHex string) string {
	h := sha256.New()
	h.Write([]byte(saltHex))
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}
