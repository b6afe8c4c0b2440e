package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, pw := range []string{"pw123", "correct horse battery staple", "ünïcödé", ""} {
		first, err := h.Hash(pw)
		require.NoError(t, err)
		second, err := h.Hash(pw)
		require.NoError(t, err)

		assert.NotEqual(t, first, second, "salted digests must differ")
		assert.True(t, h.Verify(pw, first))
		assert.True(t, h.Verify(pw, second))
		assert.False(t, h.Verify(pw+"x", first))
	}
}

func TestVerify_MalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, digest := range []string{"", "not-a-hash", "$2a$04$short", strings.Repeat("$", 60)} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("pw123", digest))
		})
	}
}

func TestNewHasher_Cost(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, bcrypt.DefaultCost},
		{1, bcrypt.MinCost},
		{12, 12},
		{99, bcrypt.MaxCost},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewHasher(tt.in).cost)
	}

	h := NewHasher(5)
	digest, err := h.Hash("pw")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestHash_TooLong(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}
