package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		assert.Len(t, id, 12)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(AlphaNum, r))
		}
		seen[id] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestGenerateIDWithLength(t *testing.T) {
	assert.Len(t, GenerateIDWithLength(16), 16)
	assert.Len(t, GenerateIDWithLength(0), 0)
}

func TestNewReqID(t *testing.T) {
	a := NewReqID()
	b := NewReqID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
