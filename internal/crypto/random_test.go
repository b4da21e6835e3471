package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := GenerateSecureToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "tokens must be unique")
}
