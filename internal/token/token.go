package token

import (
	"context"

	"github.com/storacha/go-ucanto/did"
)

// Token is the value-transfer collaborator charges are settled through. Both
// methods either fully apply or fully fail; there is no partial transfer.
type Token interface {
	// TransferFrom moves value from one account to another on behalf of the
	// service.
	TransferFrom(ctx context.Context, from did.DID, to did.DID, value uint64) error

	// Transfer moves value from the service's own custody account to the
	// recipient.
	Transfer(ctx context.Context, to did.DID, value uint64) error
}
