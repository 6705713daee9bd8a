package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	s, err := Generate(0)
	require.NoError(t, err)
	assert.Len(t, s, DefaultLength)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
	}
}

func TestNewPaymentReference_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 500 {
		ref, err := NewPaymentReference()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, "PAY-"))
		_, dup := seen[ref]
		require.False(t, dup)
		seen[ref] = struct{}{}
	}
}
