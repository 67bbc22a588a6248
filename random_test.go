package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"

	auth "github.com/goentry/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomString(t *testing.T) {
	t.Run("draws only from the selected charset", func(t *testing.T) {
		tests := []struct {
			name    string
			opts    auth.CharsetOptions
			allowed string
		}{
			{
				name:    "lowercase only",
				opts:    auth.CharsetOptions{Lowercase: true},
				allowed: "abcdefghijklmnopqrstuvwxyz",
			},
			{
				name:    "uppercase only",
				opts:    auth.CharsetOptions{Uppercase: true},
				allowed: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			},
			{
				name:    "digits only",
				opts:    auth.CharsetOptions{Digits: true},
				allowed: "0123456789",
			},
			{
				name:    "full alphabet",
				opts:    auth.DefaultCharset,
				allowed: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				out, err := auth.GenerateRandomString(64, tt.opts)
				require.NoError(t, err)
				assert.Len(t, out, 64)

				for _, r := range out {
					assert.True(t, strings.ContainsRune(tt.allowed, r),
						"unexpected character %q", r)
				}
			})
		}
	})

	t.Run("zero length returns empty string", func(t *testing.T) {
		out, err := auth.GenerateRandomString(0, auth.DefaultCharset)
		assert.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("negative length is rejected", func(t *testing.T) {
		_, err := auth.GenerateRandomString(-1, auth.DefaultCharset)
		assert.Error(t, err)
	})

	t.Run("empty charset is rejected", func(t *testing.T) {
		_, err := auth.GenerateRandomString(10, auth.CharsetOptions{})
		assert.Error(t, err)
	})

	t.Run("consecutive calls differ", func(t *testing.T) {
		a, err := auth.GenerateRandomString(32, auth.DefaultCharset)
		require.NoError(t, err)
		b, err := auth.GenerateRandomString(32, auth.DefaultCharset)
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})
}

func TestGenerateResetSecret(t *testing.T) {
	a, err := auth.GenerateResetSecret()
	require.NoError(t, err)
	b, err := auth.GenerateResetSecret()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	decoded, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, decoded, auth.ResetSecretSize)
}
