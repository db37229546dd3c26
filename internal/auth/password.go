package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// IsHashed reports whether a stored credential is a bcrypt hash, by format
// tag. Anything else is treated as a legacy plaintext credential left over
// from the system this one replaces.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// VerifyPassword checks a supplied password against a stored credential,
// dispatching on the stored value's format. legacy is true when the match
// succeeded against a plaintext credential, signalling the caller to rehash.
func VerifyPassword(stored, supplied string) (ok, legacy bool) {
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil, false
	}
	// Legacy plaintext row.
	match := subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
	return match, match
}

// MaskCredential renders a stored credential for the admin reveal endpoint:
// plaintext values pass through, hashes are truncated and tagged since they
// cannot be reversed.
func MaskCredential(stored string) (value, note string) {
	if IsHashed(stored) {
		prefix := stored
		if len(prefix) > 20 {
			prefix = prefix[:20]
		}
		return "[HASHED] " + prefix + "...", "Password is hashed and cannot be decrypted"
	}
	return stored, "Password retrieved successfully"
}
