package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateTokenUniqueAndURLSafe(t *testing.T) {
	first, err := GenerateToken(32)
	require.NoError(t, err)
	second, err := GenerateToken(32)
	require.NoError(t, err)

	require.NotEmpty(t, first)
	require.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		require.False(t, strings.ContainsAny(token, "+/="), "token %q must be URL-safe", token)
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	hash := HashToken("claim-token")
	require.Len(t, hash, 64)
	require.Equal(t, hash, HashToken("claim-token"))
	require.NotEqual(t, hash, HashToken("other-token"))
}
