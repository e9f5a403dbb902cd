package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/storacha/go-ucanto/client"
	"github.com/storacha/go-ucanto/core/delegation"
	"github.com/storacha/go-ucanto/core/invocation"
	"github.com/storacha/go-ucanto/core/result"
	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/principal"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
	ucanto "github.com/storacha/go-ucanto/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storacha/payme/internal/capabilities"
	"github.com/storacha/payme/internal/db/allowance"
	"github.com/storacha/payme/internal/service"
)

// mockService implements service.Service for testing
type mockService struct {
	approveFunc      func(ctx context.Context, call service.Call, spender did.DID, ceiling uint64, nextChargeAt time.Time) error
	chargeFunc       func(ctx context.Context, call service.Call, from did.DID, value uint64) (*service.ChargeResult, error)
	getAllowanceFunc func(ctx context.Context, owner did.DID, spender did.DID) (allowance.Record, error)
}

func (m *mockService) Approve(ctx context.Context, call service.Call, spender did.DID, ceiling uint64, nextChargeAt time.Time) error {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, call, spender, ceiling, nextChargeAt)
	}
	return fmt.Errorf("mockService.Approve not implemented")
}

func (m *mockService) Charge(ctx context.Context, call service.Call, from did.DID, value uint64) (*service.ChargeResult, error) {
	if m.chargeFunc != nil {
		return m.chargeFunc(ctx, call, from, value)
	}
	return nil, fmt.Errorf("mockService.Charge not implemented")
}

func (m *mockService) GetAllowance(ctx context.Context, owner did.DID, spender did.DID) (allowance.Record, error) {
	if m.getAllowanceFunc != nil {
		return m.getAllowanceFunc(ctx, owner, spender)
	}
	return allowance.Record{}, fmt.Errorf("mockService.GetAllowance not implemented")
}

var _ service.Service = (*mockService)(nil)

func randomSigner(t *testing.T) principal.Signer {
	t.Helper()
	signer, err := ed25519.Generate()
	require.NoError(t, err)
	return signer
}

func newTestConnection(id principal.Signer, svc service.Service) (client.Connection, error) {
	ucantoSrv, err := ucanto.NewServer(id, serviceMethods(svc)...)
	if err != nil {
		return nil, err
	}

	return client.NewConnection(id, ucantoSrv)
}

func TestApproveHandler(t *testing.T) {
	serviceSigner := randomSigner(t)

	t.Run("successful invocation", func(t *testing.T) {
		owner := randomSigner(t)
		spender := randomSigner(t).DID()
		nextChargeAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

		mockSvc := &mockService{
			approveFunc: func(ctx context.Context, call service.Call, sp did.DID, ceiling uint64, at time.Time) error {
				assert.Equal(t, owner.DID(), call.Caller)
				assert.Equal(t, spender, sp)
				assert.Equal(t, uint64(500), ceiling)
				assert.Equal(t, nextChargeAt, at)
				return nil
			},
		}

		conn, err := newTestConnection(serviceSigner, mockSvc)
		require.NoError(t, err)

		inv, err := capabilities.Approve.Invoke(
			owner,
			serviceSigner,
			owner.DID().String(),
			capabilities.ApproveCaveats{
				Spender:      spender.String(),
				Ceiling:      500,
				NextChargeAt: nextChargeAt.Unix(),
			},
			delegation.WithNoExpiration(),
		)
		require.NoError(t, err)

		resp, err := client.Execute(context.Background(), []invocation.Invocation{inv}, conn)
		require.NoError(t, err)

		rcptLink, ok := resp.Get(inv.Link())
		require.True(t, ok)

		reader, err := capabilities.NewApproveReceiptReader()
		require.NoError(t, err)

		rcpt, err := reader.Read(rcptLink, resp.Blocks())
		require.NoError(t, err)

		approveOk, failure := result.Unwrap(rcpt.Out())
		require.Empty(t, failure.Message)
		assert.Equal(t, int64(500), approveOk.Ceiling)
		assert.Equal(t, nextChargeAt.Unix(), approveOk.NextChargeAt)
	})

	t.Run("rejection surfaces as a failed receipt", func(t *testing.T) {
		owner := randomSigner(t)

		mockSvc := &mockService{
			approveFunc: func(ctx context.Context, call service.Call, sp did.DID, ceiling uint64, at time.Time) error {
				return service.NewInvalidTimestampError("first charge time is not in the future")
			},
		}

		conn, err := newTestConnection(serviceSigner, mockSvc)
		require.NoError(t, err)

		inv, err := capabilities.Approve.Invoke(
			owner,
			serviceSigner,
			owner.DID().String(),
			capabilities.ApproveCaveats{
				Spender:      randomSigner(t).DID().String(),
				Ceiling:      500,
				NextChargeAt: time.Now().Add(-time.Hour).Unix(),
			},
			delegation.WithNoExpiration(),
		)
		require.NoError(t, err)

		resp, err := client.Execute(context.Background(), []invocation.Invocation{inv}, conn)
		require.NoError(t, err)

		rcptLink, ok := resp.Get(inv.Link())
		require.True(t, ok)

		reader, err := capabilities.NewApproveReceiptReader()
		require.NoError(t, err)

		rcpt, err := reader.Read(rcptLink, resp.Blocks())
		require.NoError(t, err)

		_, failure := result.Unwrap(rcpt.Out())
		assert.Contains(t, failure.Message, "not in the future")
		require.NotNil(t, failure.Name)
		assert.Equal(t, "InvalidTimestamp", *failure.Name)
	})
}

func TestChargeHandler(t *testing.T) {
	serviceSigner := randomSigner(t)

	t.Run("successful invocation", func(t *testing.T) {
		spender := randomSigner(t)
		owner := randomSigner(t).DID()
		nextChargeAt := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)

		mockSvc := &mockService{
			chargeFunc: func(ctx context.Context, call service.Call, from did.DID, value uint64) (*service.ChargeResult, error) {
				assert.Equal(t, spender.DID(), call.Caller)
				assert.Equal(t, owner, from)
				assert.Equal(t, uint64(250), value)
				return &service.ChargeResult{
					Value:        value,
					NextChargeAt: nextChargeAt,
					PeriodIndex:  1,
				}, nil
			},
		}

		conn, err := newTestConnection(serviceSigner, mockSvc)
		require.NoError(t, err)

		inv, err := capabilities.Charge.Invoke(
			spender,
			serviceSigner,
			spender.DID().String(),
			capabilities.ChargeCaveats{
				From:  owner.String(),
				Value: 250,
			},
			delegation.WithNoExpiration(),
		)
		require.NoError(t, err)

		resp, err := client.Execute(context.Background(), []invocation.Invocation{inv}, conn)
		require.NoError(t, err)

		rcptLink, ok := resp.Get(inv.Link())
		require.True(t, ok)

		reader, err := capabilities.NewChargeReceiptReader()
		require.NoError(t, err)

		rcpt, err := reader.Read(rcptLink, resp.Blocks())
		require.NoError(t, err)

		chargeOk, failure := result.Unwrap(rcpt.Out())
		require.Empty(t, failure.Message)
		assert.Equal(t, int64(250), chargeOk.Value)
		assert.Equal(t, nextChargeAt.Unix(), chargeOk.NextChargeAt)
		assert.Equal(t, int64(1), chargeOk.PeriodIndex)
	})

	t.Run("premature charge surfaces as a failed receipt", func(t *testing.T) {
		spender := randomSigner(t)
		owner := randomSigner(t).DID()

		mockSvc := &mockService{
			chargeFunc: func(ctx context.Context, call service.Call, from did.DID, value uint64) (*service.ChargeResult, error) {
				return nil, service.NewInvalidTimestampError("charge not eligible until later")
			},
		}

		conn, err := newTestConnection(serviceSigner, mockSvc)
		require.NoError(t, err)

		inv, err := capabilities.Charge.Invoke(
			spender,
			serviceSigner,
			spender.DID().String(),
			capabilities.ChargeCaveats{
				From:  owner.String(),
				Value: 100,
			},
			delegation.WithNoExpiration(),
		)
		require.NoError(t, err)

		resp, err := client.Execute(context.Background(), []invocation.Invocation{inv}, conn)
		require.NoError(t, err)

		rcptLink, ok := resp.Get(inv.Link())
		require.True(t, ok)

		reader, err := capabilities.NewChargeReceiptReader()
		require.NoError(t, err)

		rcpt, err := reader.Read(rcptLink, resp.Blocks())
		require.NoError(t, err)

		_, failure := result.Unwrap(rcpt.Out())
		assert.Contains(t, failure.Message, "not eligible")
		require.NotNil(t, failure.Name)
		assert.Equal(t, "InvalidTimestamp", *failure.Name)
	})
}
