package presets

import (
	"context"
	"testing"

	"github.com/storacha/go-ucanto/did"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetResolver(t *testing.T) {
	r, err := NewPresetResolver()
	require.NoError(t, err)

	t.Run("resolves known spender principals", func(t *testing.T) {
		for dw, dk := range spenderPrincipals {
			input, err := did.Parse(dw)
			require.NoError(t, err)
			expected, err := did.Parse(dk)
			require.NoError(t, err)

			resolved, uerr := r.ResolveDIDKey(context.Background(), input)
			require.Nil(t, uerr)
			assert.Equal(t, expected, resolved)
		}
	})

	t.Run("rejects unknown principals", func(t *testing.T) {
		signer, err := ed25519.Generate()
		require.NoError(t, err)

		resolved, uerr := r.ResolveDIDKey(context.Background(), signer.DID())
		require.NotNil(t, uerr)
		assert.Equal(t, did.Undef, resolved)
	})
}
