package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id, err := GenerateRandomID(DefaultIDLength)
		require.NoError(t, err)
		assert.Len(t, id, DefaultIDLength)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(idAlphabet, r), "unexpected rune %q", r)
		}
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateRandomIDInvalidLength(t *testing.T) {
	_, err := GenerateRandomID(0)
	assert.Error(t, err)
}
