package server

import (
	"context"
	"errors"
	"time"

	"github.com/storacha/go-ucanto/core/invocation"
	"github.com/storacha/go-ucanto/core/receipt/fx"
	"github.com/storacha/go-ucanto/core/result"
	"github.com/storacha/go-ucanto/core/result/failure"
	"github.com/storacha/go-ucanto/did"
	userver "github.com/storacha/go-ucanto/server"
	"github.com/storacha/go-ucanto/ucan"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/storacha/payme/internal/capabilities"
	"github.com/storacha/payme/internal/metrics"
	"github.com/storacha/payme/internal/service"
)

type approveResult = result.Result[capabilities.ApproveOk, failure.IPLDBuilderFailure]

type chargeResult = result.Result[capabilities.ChargeOk, failure.IPLDBuilderFailure]

func serviceMethods(svc service.Service) []userver.Option {
	return []userver.Option{
		userver.WithServiceMethod(
			capabilities.ApproveAbility,
			userver.Provide(capabilities.Approve, ucanApproveHandler(svc)),
		),
		userver.WithServiceMethod(
			capabilities.ChargeAbility,
			userver.Provide(capabilities.Charge, ucanChargeHandler(svc)),
		),
	}
}

func ucanApproveHandler(svc service.Service) func(ctx context.Context, cap ucan.Capability[capabilities.ApproveCaveats], inv invocation.Invocation, ictx userver.InvocationContext) (approveResult, fx.Effects, error) {
	return func(ctx context.Context, cap ucan.Capability[capabilities.ApproveCaveats], inv invocation.Invocation, ictx userver.InvocationContext) (approveResult, fx.Effects, error) {
		owner := inv.Issuer().DID()

		// An unparseable spender is treated as the zero identity.
		spender, err := did.Parse(cap.Nb().Spender)
		if err != nil {
			spender = did.Undef
		}

		ceiling := cap.Nb().Ceiling
		if ceiling < 0 {
			ceiling = 0
		}

		call := service.Call{
			Caller: owner,
			Now:    time.Now().UTC(),
			Cause:  inv.Link(),
		}

		nextChargeAt := time.Unix(cap.Nb().NextChargeAt, 0).UTC()

		if err := svc.Approve(ctx, call, spender, uint64(ceiling), nextChargeAt); err != nil {
			countRejection(ctx, err)
			return result.Error[capabilities.ApproveOk, failure.IPLDBuilderFailure](failure.FromError(err)), nil, nil
		}

		return result.Ok[capabilities.ApproveOk, failure.IPLDBuilderFailure](capabilities.ApproveOk{
			Ceiling:      cap.Nb().Ceiling,
			NextChargeAt: cap.Nb().NextChargeAt,
		}), nil, nil
	}
}

func ucanChargeHandler(svc service.Service) func(ctx context.Context, cap ucan.Capability[capabilities.ChargeCaveats], inv invocation.Invocation, ictx userver.InvocationContext) (chargeResult, fx.Effects, error) {
	return func(ctx context.Context, cap ucan.Capability[capabilities.ChargeCaveats], inv invocation.Invocation, ictx userver.InvocationContext) (chargeResult, fx.Effects, error) {
		spender := inv.Issuer().DID()

		from, err := did.Parse(cap.Nb().From)
		if err != nil {
			from = did.Undef
		}

		value := cap.Nb().Value
		if value < 0 {
			err := service.NewInsufficientAllowanceError("charge value must not be negative")
			countRejection(ctx, err)
			return result.Error[capabilities.ChargeOk, failure.IPLDBuilderFailure](failure.FromError(err)), nil, nil
		}

		call := service.Call{
			Caller: spender,
			Now:    time.Now().UTC(),
			Cause:  inv.Link(),
		}

		res, err := svc.Charge(ctx, call, from, uint64(value))
		if err != nil {
			countRejection(ctx, err)
			return result.Error[capabilities.ChargeOk, failure.IPLDBuilderFailure](failure.FromError(err)), nil, nil
		}

		return result.Ok[capabilities.ChargeOk, failure.IPLDBuilderFailure](capabilities.ChargeOk{
			Value:        int64(res.Value),
			NextChargeAt: res.NextChargeAt.Unix(),
			PeriodIndex:  int64(res.PeriodIndex),
		}), nil, nil
	}
}

func countRejection(ctx context.Context, err error) {
	var rejection service.RejectionError
	if !errors.As(err, &rejection) {
		return
	}

	attributes := attribute.NewSet(attribute.String("reason", rejection.Reason()))
	metrics.ChargesRejected.Add(ctx, 1, metric.WithAttributeSet(attributes))
}
