package password

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerate(t *testing.T) {
	alnum := regexp.MustCompile(`^[A-Za-z0-9]{8}$`)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		pw, err := Generate(GeneratedLength)
		require.NoError(t, err)
		assert.Regexp(t, alnum, pw)
		seen[pw] = true
	}

	assert.Greater(t, len(seen), 45)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cretPw")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretPw", hash)

	assert.NoError(t, hasher.Compare(hash, "s3cretPw"))
	assert.Error(t, hasher.Compare(hash, "wrong"))

	other, err := hasher.Hash("s3cretPw")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}
