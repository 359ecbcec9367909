package passhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := New(bcrypt.MinCost)

	hash, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)

	ok, err := h.Verify("Passw0rd!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_Salted(t *testing.T) {
	h := New(bcrypt.MinCost)

	h1, err := h.Hash("same")
	require.NoError(t, err)
	h2, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHash_TooLong(t *testing.T) {
	_, err := New(bcrypt.MinCost).Hash(strings.Repeat("a", MaxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerify_MalformedHash(t *testing.T) {
	ok, err := New(bcrypt.MinCost).Verify("pw", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNew_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, New(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, New(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, New(bcrypt.MinCost).cost)
}

func TestCompareDummy(t *testing.T) {
	h := New(bcrypt.MinCost)
	assert.NotPanics(t, func() {
		h.CompareDummy("anything")
		h.CompareDummy("again")
	})
	assert.NotEmpty(t, h.dummy)
}
