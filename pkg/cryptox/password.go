package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// SpecialChars is the set of characters that satisfies the "special
// character" requirement of the registration password policy.
const SpecialChars = "=+#?!@$%^&*-"

// ErrWeakPassword is the single combined policy message. Registration
// surfaces it verbatim; it deliberately does not say which requirement
// was missed.
var ErrWeakPassword = errors.New(
	"password must be at least 8 characters long and contain an upper-case latin letter, " +
		"a lower-case latin letter, a digit and at least one of the special characters " + SpecialChars,
)

// CheckPasswordPolicy validates a plaintext password against the
// registration policy: length >= 8, at least one upper-case ASCII letter,
// one lower-case ASCII letter, one digit and one character from
// SpecialChars. Any shortfall returns ErrWeakPassword.
func CheckPasswordPolicy(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(SpecialChars, r):
			special = true
		}
	}

	if len(password) < 8 || !upper || !lower || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword generates a PHC-format Argon2id hash string including salt
// and parameters. The same plaintext produces a different hash every call
// (random salt). Besides password storage this is also the one-way binding
// function that ties a refresh token to its exact access token string:
// unlike bcrypt, Argon2id has no input length cap, so the whole token
// participates in the digest.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// PHC-style encoded string
	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. Malformed hashes come back as ordinary errors, never panics, so a
// caller can treat "does not verify" and "garbage input" the same way.
func VerifyPassword(password, encodedHash string) error {
	// Parse PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encodedHash, "$")

	// Expected structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iters,
		mem,
		par,
		uint32(len(expectedHash)), // #nosec G115 - If this overflows we have bigger problems
	)

	if subtle.ConstantTimeCompare(computed, expectedHash) == 1 {
		return nil
	}
	return errors.New("password does not match")
}
