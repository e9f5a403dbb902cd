package capabilities

import (
	"fmt"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/storacha/go-ucanto/core/ipld"
	"github.com/storacha/go-ucanto/core/receipt"
	"github.com/storacha/go-ucanto/core/result/failure"
	fdm "github.com/storacha/go-ucanto/core/result/failure/datamodel"
	"github.com/storacha/go-ucanto/core/schema"
	"github.com/storacha/go-ucanto/ucan"
	"github.com/storacha/go-ucanto/validator"
)

const ApproveAbility = "payment/approve"

const ChargeAbility = "payment/charge"

// ApproveCaveats carries the terms of a standing approval: the spender being
// authorized, the per-charge ceiling, and the first eligible charge time as
// unix seconds. The approving owner is the invocation issuer.
type ApproveCaveats struct {
	Spender      string
	Ceiling      int64
	NextChargeAt int64
}

func (ac ApproveCaveats) ToIPLD() (datamodel.Node, error) {
	return ipld.WrapWithRecovery(&ac, ApproveCaveatsType())
}

var ApproveCaveatsReader = schema.Struct[ApproveCaveats](ApproveCaveatsType(), nil)

type ApproveOk struct {
	Ceiling      int64
	NextChargeAt int64
}

func (ao ApproveOk) ToIPLD() (datamodel.Node, error) {
	return ipld.WrapWithRecovery(&ao, ApproveOkType())
}

var ApproveOkReader = schema.Struct[ApproveOk](ApproveOkType(), nil)

type ApproveReceipt receipt.Receipt[ApproveOk, fdm.FailureModel]

type ApproveReceiptReader receipt.ReceiptReader[ApproveOk, fdm.FailureModel]

func NewApproveReceiptReader() (ApproveReceiptReader, error) {
	return receipt.NewReceiptReaderFromTypes[ApproveOk, fdm.FailureModel](ApproveOkType(), fdm.FailureType())
}

// Approve capability definition
// This capability allows an owner to authorize a spender to pull recurring
// charges from them. The resource is the owner's own DID.
var Approve = validator.NewCapability(
	ApproveAbility,
	schema.DIDString(),
	schema.Struct[ApproveCaveats](ApproveCaveatsType(), nil),
	func(claimed, delegated ucan.Capability[ApproveCaveats]) failure.Failure {
		if fail := equalWith(claimed, delegated); fail != nil {
			return fail
		}

		return nil
	},
)

// ChargeCaveats carries one charge request: the owner being charged and the
// value to pull. The charging spender is the invocation issuer.
type ChargeCaveats struct {
	From  string
	Value int64
}

func (cc ChargeCaveats) ToIPLD() (datamodel.Node, error) {
	return ipld.WrapWithRecovery(&cc, ChargeCaveatsType())
}

var ChargeCaveatsReader = schema.Struct[ChargeCaveats](ChargeCaveatsType(), nil)

// ChargeOk reports the settled value and the advanced schedule.
type ChargeOk struct {
	Value        int64
	NextChargeAt int64
	PeriodIndex  int64
}

func (co ChargeOk) ToIPLD() (datamodel.Node, error) {
	return ipld.WrapWithRecovery(&co, ChargeOkType())
}

var ChargeOkReader = schema.Struct[ChargeOk](ChargeOkType(), nil)

type ChargeReceipt receipt.Receipt[ChargeOk, fdm.FailureModel]

type ChargeReceiptReader receipt.ReceiptReader[ChargeOk, fdm.FailureModel]

func NewChargeReceiptReader() (ChargeReceiptReader, error) {
	return receipt.NewReceiptReaderFromTypes[ChargeOk, fdm.FailureModel](ChargeOkType(), fdm.FailureType())
}

// Charge capability definition
// This capability allows a spender to pull an eligible recurring charge from
// an owner that approved them. The resource is the spender's own DID;
// authorization against the owner comes from the stored approval, not from a
// delegation chain.
var Charge = validator.NewCapability(
	ChargeAbility,
	schema.DIDString(),
	schema.Struct[ChargeCaveats](ChargeCaveatsType(), nil),
	func(claimed, delegated ucan.Capability[ChargeCaveats]) failure.Failure {
		if fail := equalWith(claimed, delegated); fail != nil {
			return fail
		}

		return nil
	},
)

// equalWith validates that the claimed capability's `with` field matches the delegated one.
func equalWith[Caveats any](claimed, delegated ucan.Capability[Caveats]) failure.Failure {
	if claimed.With() != delegated.With() {
		return schema.NewSchemaError(fmt.Sprintf(
			"Resource '%s' doesn't match delegated '%s'",
			claimed.With(), delegated.With(),
		))
	}

	return nil
}
