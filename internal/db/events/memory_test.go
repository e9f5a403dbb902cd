package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/multiformats/go-multihash"
	"github.com/storacha/go-ucanto/did"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
	"github.com/storacha/go-ucanto/ucan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomDID(t *testing.T) did.DID {
	t.Helper()
	signer, err := ed25519.Generate()
	require.NoError(t, err)
	return signer.DID()
}

func randomLink(t *testing.T, seed int) ucan.Link {
	t.Helper()
	mh, err := multihash.Sum([]byte(fmt.Sprintf("event-%d", seed)), multihash.SHA2_256, -1)
	require.NoError(t, err)
	return cidlink.Link{Cid: cid.NewCidV1(cid.Raw, mh)}
}

func TestMemoryEventTable(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("get by cause", func(t *testing.T) {
		tbl := NewMemoryEventTable()
		owner := randomDID(t)
		cause := randomLink(t, 1)

		record := EventRecord{
			Owner:        owner,
			Cause:        cause,
			Kind:         KindTransfer,
			Counterparty: randomDID(t),
			Value:        100,
			NextChargeAt: now.Add(time.Hour),
			EmittedAt:    now,
		}
		require.NoError(t, tbl.Add(ctx, record))

		got, err := tbl.Get(ctx, owner, cause)
		require.NoError(t, err)
		assert.Equal(t, record, *got)
	})

	t.Run("missing cause is not found", func(t *testing.T) {
		tbl := NewMemoryEventTable()
		owner := randomDID(t)

		_, err := tbl.Get(ctx, owner, randomLink(t, 2))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list is scoped to the owner and bounded by the limit", func(t *testing.T) {
		tbl := NewMemoryEventTable()
		owner := randomDID(t)
		other := randomDID(t)

		for i := 0; i < 5; i++ {
			require.NoError(t, tbl.Add(ctx, EventRecord{
				Owner:     owner,
				Cause:     randomLink(t, i),
				Kind:      KindApproval,
				EmittedAt: now.Add(time.Duration(i) * time.Minute),
			}))
		}
		require.NoError(t, tbl.Add(ctx, EventRecord{
			Owner:     other,
			Cause:     randomLink(t, 100),
			Kind:      KindApproval,
			EmittedAt: now,
		}))

		records, err := tbl.ListByOwner(ctx, owner, 3)
		require.NoError(t, err)
		require.Len(t, records, 3)
		for _, r := range records {
			assert.Equal(t, owner, r.Owner)
		}
		// most recent events are retained
		assert.Equal(t, now.Add(4*time.Minute), records[2].EmittedAt)
	})
}
