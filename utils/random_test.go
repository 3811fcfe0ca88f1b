package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateBase36Token_Length 测试Token长度
func TestGenerateBase36Token_Length(t *testing.T) {
	for _, length := range []int{1, 8, 13, 64} {
		token, err := GenerateBase36Token(length)
		require.NoError(t, err)
		assert.Len(t, token, length)
	}
}

// TestGenerateBase36Token_Charset 测试Token字符集
func TestGenerateBase36Token_Charset(t *testing.T) {
	token, err := GenerateBase36Token(256)
	require.NoError(t, err)
	assert.Regexp(t, "^[0-9a-z]+$", token)
}

// TestGenerateBase36Token_Uniqueness 测试Token唯一性
func TestGenerateBase36Token_Uniqueness(t *testing.T) {
	const numTokens = 100
	tokens := make(map[string]bool)

	for i := 0; i < numTokens; i++ {
		token, err := GenerateBase36Token(13)
		require.NoError(t, err)
		assert.False(t, tokens[token], "Duplicate token generated: %s", token)
		tokens[token] = true
	}

	assert.Equal(t, numTokens, len(tokens), "All tokens should be unique")
}

// TestGenerateBase36Token_EmptyLength 测试空长度
func TestGenerateBase36Token_EmptyLength(t *testing.T) {
	token, err := GenerateBase36Token(0)
	require.NoError(t, err)
	assert.Empty(t, token)
}
