package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/principal"
	"github.com/storacha/go-ucanto/ucan"

	"github.com/storacha/payme/internal/db/allowance"
	"github.com/storacha/payme/internal/events"
	"github.com/storacha/payme/internal/schedule"
	"github.com/storacha/payme/internal/token"
)

var log = logging.Logger("service")

// Call carries the environment-provided facts about one operation: who issued
// the invocation, the clock reading it executes against, and the invocation
// link that caused it. Keeping these explicit keeps the engine testable
// without a live execution environment.
type Call struct {
	Caller did.DID
	Now    time.Time
	Cause  ucan.Link
}

// ChargeResult reports the schedule state written by a successful charge.
type ChargeResult struct {
	Value        uint64
	NextChargeAt time.Time
	PeriodIndex  int
}

type Service interface {
	// Approve creates or overwrites the standing approval from the caller
	// (the owner) to spender. The period position always resets to the start
	// of the table.
	Approve(ctx context.Context, call Call, spender did.DID, ceiling uint64, nextChargeAt time.Time) error

	// Charge pulls value from the owner to the caller (the spender), then
	// advances the owner's schedule past the execution time.
	Charge(ctx context.Context, call Call, from did.DID, value uint64) (*ChargeResult, error)

	// GetAllowance returns the stored approval for the pair, or the zero
	// record when none exists.
	GetAllowance(ctx context.Context, owner did.DID, spender did.DID) (allowance.Record, error)
}

type service struct {
	id         principal.Signer
	allowances allowance.Table
	periods    *schedule.Table
	token      token.Token
	announcer  events.Announcer

	// Serializes operations end-to-end so the per-key read-modify-write of a
	// charge is atomic with respect to concurrent calls, matching the
	// one-operation-at-a-time execution model the engine assumes.
	mu sync.Mutex
}

func New(
	id principal.Signer,
	allowances allowance.Table,
	periods *schedule.Table,
	tok token.Token,
	announcer events.Announcer,
) (Service, error) {
	if periods == nil {
		return nil, schedule.ErrEmptyTable
	}

	return &service{
		id:         id,
		allowances: allowances,
		periods:    periods,
		token:      tok,
		announcer:  announcer,
	}, nil
}

func (s *service) Approve(ctx context.Context, call Call, spender did.DID, ceiling uint64, nextChargeAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spender == did.Undef {
		return NewApproveToZeroAddressError()
	}

	if ceiling == 0 {
		return NewInsufficientAllowanceError("approval ceiling must be greater than zero")
	}

	if !nextChargeAt.After(call.Now) {
		return NewInvalidTimestampError(fmt.Sprintf(
			"first charge time %s is not in the future (now %s)",
			nextChargeAt.Format(time.RFC3339), call.Now.Format(time.RFC3339),
		))
	}

	record := allowance.Record{
		Ceiling:      ceiling,
		NextChargeAt: nextChargeAt,
		PeriodIndex:  0,
	}
	if err := s.allowances.Put(ctx, call.Caller, spender, record); err != nil {
		return err
	}

	s.announcer.Announce(events.Approval{
		Owner:        call.Caller,
		Spender:      spender,
		Ceiling:      ceiling,
		NextChargeAt: nextChargeAt,
		Cause:        call.Cause,
		At:           call.Now,
	})

	log.Infow("approved", "owner", call.Caller, "spender", spender, "ceiling", ceiling)
	return nil
}

func (s *service) Charge(ctx context.Context, call Call, from did.DID, value uint64) (*ChargeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == did.Undef {
		return nil, NewChargeFromZeroAddressError()
	}

	record, err := s.allowances.Get(ctx, from, call.Caller)
	if err != nil {
		return nil, err
	}

	if record.NextChargeAt.IsZero() {
		return nil, NewInsufficientAllowanceError(fmt.Sprintf(
			"no approval from %s to %s", from, call.Caller,
		))
	}

	// The ceiling is a per-charge cap, not a spend-down budget. It is never
	// decremented, so a zero ceiling always means "no approval".
	if record.Ceiling < value {
		return nil, NewInsufficientAllowanceError(fmt.Sprintf(
			"charge of %d exceeds per-charge ceiling %d", value, record.Ceiling,
		))
	}

	if record.NextChargeAt.After(call.Now) {
		return nil, NewInvalidTimestampError(fmt.Sprintf(
			"charge not eligible until %s (now %s)",
			record.NextChargeAt.Format(time.RFC3339), call.Now.Format(time.RFC3339),
		))
	}

	// Two transfer legs: owner to the service's custody, custody to the
	// spender. Nothing is written before both legs succeed, so a failed
	// charge leaves the allowance record untouched.
	if err := s.token.TransferFrom(ctx, from, s.id.DID(), value); err != nil {
		return nil, NewTransferFromFailedError(err)
	}
	if err := s.token.Transfer(ctx, call.Caller, value); err != nil {
		return nil, NewTransferFailedError(err)
	}

	record.NextChargeAt, record.PeriodIndex = s.periods.Advance(record.NextChargeAt, record.PeriodIndex, call.Now)

	if err := s.allowances.Put(ctx, from, call.Caller, record); err != nil {
		return nil, err
	}

	s.announcer.Announce(events.Transfer{
		From:         from,
		To:           call.Caller,
		Value:        value,
		NextChargeAt: record.NextChargeAt,
		Cause:        call.Cause,
		At:           call.Now,
	})

	log.Infow("charged", "from", from, "to", call.Caller, "value", value, "nextChargeAt", record.NextChargeAt)

	return &ChargeResult{
		Value:        value,
		NextChargeAt: record.NextChargeAt,
		PeriodIndex:  record.PeriodIndex,
	}, nil
}

func (s *service) GetAllowance(ctx context.Context, owner did.DID, spender did.DID) (allowance.Record, error) {
	return s.allowances.Get(ctx, owner, spender)
}
