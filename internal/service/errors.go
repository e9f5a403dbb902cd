package service

import "fmt"

// RejectionError is implemented by every named rejection so that surfaces can
// report a stable reason without unpacking concrete types. Each rejection also
// carries a Name so receipt failures identify the rejection class.
type RejectionError interface {
	error
	Name() string
	Reason() string
}

type ErrApproveToZeroAddress struct {
	msg string
}

func NewApproveToZeroAddressError() ErrApproveToZeroAddress {
	return ErrApproveToZeroAddress{msg: "cannot approve the zero identity as spender"}
}

func (e ErrApproveToZeroAddress) Name() string   { return "ApproveToZeroAddress" }
func (e ErrApproveToZeroAddress) Error() string  { return e.msg }
func (e ErrApproveToZeroAddress) Reason() string { return "approve-to-zero-address" }

type ErrChargeFromZeroAddress struct {
	msg string
}

func NewChargeFromZeroAddressError() ErrChargeFromZeroAddress {
	return ErrChargeFromZeroAddress{msg: "cannot charge the zero identity"}
}

func (e ErrChargeFromZeroAddress) Name() string   { return "ChargeFromZeroAddress" }
func (e ErrChargeFromZeroAddress) Error() string  { return e.msg }
func (e ErrChargeFromZeroAddress) Reason() string { return "charge-from-zero-address" }

type ErrInsufficientAllowance struct {
	msg string
}

func NewInsufficientAllowanceError(msg string) ErrInsufficientAllowance {
	return ErrInsufficientAllowance{msg: msg}
}

func (e ErrInsufficientAllowance) Name() string   { return "InsufficientAllowance" }
func (e ErrInsufficientAllowance) Error() string  { return e.msg }
func (e ErrInsufficientAllowance) Reason() string { return "insufficient-allowance" }

type ErrInvalidTimestamp struct {
	msg string
}

func NewInvalidTimestampError(msg string) ErrInvalidTimestamp {
	return ErrInvalidTimestamp{msg: msg}
}

func (e ErrInvalidTimestamp) Name() string   { return "InvalidTimestamp" }
func (e ErrInvalidTimestamp) Error() string  { return e.msg }
func (e ErrInvalidTimestamp) Reason() string { return "invalid-timestamp" }

type ErrTransferFromFailed struct {
	cause error
}

func NewTransferFromFailedError(cause error) ErrTransferFromFailed {
	return ErrTransferFromFailed{cause: cause}
}

func (e ErrTransferFromFailed) Error() string {
	return fmt.Sprintf("transfer from owner failed: %v", e.cause)
}
func (e ErrTransferFromFailed) Name() string   { return "TransferFromFailed" }
func (e ErrTransferFromFailed) Unwrap() error  { return e.cause }
func (e ErrTransferFromFailed) Reason() string { return "transfer-from-failed" }

type ErrTransferFailed struct {
	cause error
}

func NewTransferFailedError(cause error) ErrTransferFailed {
	return ErrTransferFailed{cause: cause}
}

func (e ErrTransferFailed) Error() string {
	return fmt.Sprintf("transfer to spender failed: %v", e.cause)
}
func (e ErrTransferFailed) Name() string   { return "TransferFailed" }
func (e ErrTransferFailed) Unwrap() error  { return e.cause }
func (e ErrTransferFailed) Reason() string { return "transfer-failed" }
