package security

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 100000

	// CredentialLength is the size of both the salt and the derived key,
	// matching the SHA-512/256 output size.
	CredentialLength = 32

	secretKeyLength = 32
)

// NewSalt returns a fresh random password salt. The bytes are opaque and
// end up in a text column; never interpret them.
func NewSalt() ([]byte, error) {
	return RandomBytes(CredentialLength)
}

// DerivePassword stretches a password with PBKDF2 over SHA-512.
func DerivePassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfIterations, CredentialLength, sha512.New)
}

// VerifyPassword re-derives the candidate password and compares it to the
// stored derivation in constant time.
func VerifyPassword(password string, salt []byte, derived []byte) bool {
	candidate := DerivePassword(password, salt)
	return subtle.ConstantTimeCompare(candidate, derived) == 1
}

// NewSecretKey returns a fresh base64-encoded 32-byte cookie signing key.
func NewSecretKey() (string, error) {
	raw, err := RandomBytes(secretKeyLength)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
