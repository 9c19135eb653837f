package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "parley-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestCheckPasswordPolicy_Accepts(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"minimal conforming", "Abc123!@"},
		{"every special char", "Aa1=+#?!@$%^&*-"},
		{"long password", "Tr0ub4dor&" + strings.Repeat("x", 50)},
		{"dash as special", "Password-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, CheckPasswordPolicy(tt.password))
		})
	}
}

func TestCheckPasswordPolicy_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1!xyz"},
		{"no upper", "abc123!@xyz"},
		{"no lower", "ABC123!@XYZ"},
		{"no digit", "Abcdefg!@"},
		{"no special", "Abc12345"},
		{"empty", ""},
		{"unlisted special only", "Abc12345~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordPolicy(tt.password)
			require.ErrorIs(t, err, ErrWeakPassword)
		})
	}
}

func TestHashPassword_PHCFormat(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long input", strings.Repeat("a", 300)},
		{"empty password", ""},
		{"unicode password", "парола🔒密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	password := "samepassword"

	hash1, err := HashPassword(password)
	require.NoError(t, err)

	hash2, err := HashPassword(password)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")

	require.NoError(t, VerifyPassword(password, hash1))
	require.NoError(t, VerifyPassword(password, hash2))
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	require.Error(t, VerifyPassword("battery staple", hash))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not phc", "plainly-not-a-hash"},
		{"wrong scheme", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA"},
		{"truncated", "$argon2id$v=19$m=1,t=1,p=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// must return an error, never panic
			require.Error(t, VerifyPassword("anything", tt.hash))
		})
	}
}

func TestHashPassword_BindsWholeInput(t *testing.T) {
	// Long inputs (such as serialized tokens) must be covered end to end:
	// flipping a character past any would-be truncation point has to fail.
	token := strings.Repeat("h", 100) + ".payload.signature"
	hash, err := HashPassword(token)
	require.NoError(t, err)
	require.NoError(t, VerifyPassword(token, hash))

	altered := token[:len(token)-1] + "X"
	require.Error(t, VerifyPassword(altered, hash))
}
