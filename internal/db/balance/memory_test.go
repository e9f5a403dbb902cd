package balance

import (
	"context"
	"testing"

	"github.com/storacha/go-ucanto/did"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomDID(t *testing.T) did.DID {
	t.Helper()
	signer, err := ed25519.Generate()
	require.NoError(t, err)
	return signer.DID()
}

func TestMemoryBalanceTable(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown account has zero balance", func(t *testing.T) {
		tbl := NewMemoryBalanceTable()

		b, err := tbl.Balance(ctx, randomDID(t))
		require.NoError(t, err)
		assert.Equal(t, uint64(0), b)
	})

	t.Run("credit accumulates", func(t *testing.T) {
		tbl := NewMemoryBalanceTable()
		account := randomDID(t)

		require.NoError(t, tbl.Credit(ctx, account, 100))
		require.NoError(t, tbl.Credit(ctx, account, 50))

		b, err := tbl.Balance(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, uint64(150), b)
	})

	t.Run("debit reduces balance", func(t *testing.T) {
		tbl := NewMemoryBalanceTable()
		account := randomDID(t)

		require.NoError(t, tbl.Credit(ctx, account, 100))
		require.NoError(t, tbl.Debit(ctx, account, 60))

		b, err := tbl.Balance(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, uint64(40), b)
	})

	t.Run("overdraft is rejected and leaves the balance untouched", func(t *testing.T) {
		tbl := NewMemoryBalanceTable()
		account := randomDID(t)

		require.NoError(t, tbl.Credit(ctx, account, 30))

		err := tbl.Debit(ctx, account, 31)
		require.ErrorIs(t, err, ErrInsufficientFunds)

		b, err := tbl.Balance(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, uint64(30), b)
	})
}
