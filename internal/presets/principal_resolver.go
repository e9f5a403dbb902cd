package presets

import (
	"context"
	"errors"

	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/validator"
)

// spenderPrincipals maps the did:web identities of known billing processors
// allowed to invoke payment/charge to their current did:key. Owners approving
// one of these services by its did:web stay valid across its key rotations.
var spenderPrincipals = map[string]string{
	"did:web:billing.storacha.network":         "did:key:z6MkiTBz1ymuepAQ4HEHYSF1H8quG5GLVVQR3djdX3mDooWp",
	"did:web:staging.billing.storacha.network": "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK",
}

type resolver struct {
	mapping map[did.DID]did.DID
}

func (r *resolver) ResolveDIDKey(ctx context.Context, input did.DID) (did.DID, validator.UnresolvedDID) {
	dk, ok := r.mapping[input]
	if !ok {
		return did.Undef, validator.NewDIDKeyResolutionError(input, errors.New("not a known spender principal"))
	}
	return dk, nil
}

func NewPresetResolver() (validator.PrincipalResolver, error) {
	dmap := make(map[did.DID]did.DID, len(spenderPrincipals))
	for k, v := range spenderPrincipals {
		dk, err := did.Parse(k)
		if err != nil {
			return nil, err
		}
		dv, err := did.Parse(v)
		if err != nil {
			return nil, err
		}
		dmap[dk] = dv
	}
	return &resolver{dmap}, nil
}
