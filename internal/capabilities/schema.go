package capabilities

import (
	_ "embed"
	"fmt"

	ipldprime "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/schema"
)

//go:embed payment.ipldsch
var paymentSchema []byte

var paymentTS = mustLoadTS()

func mustLoadTS() *schema.TypeSystem {
	ts, err := ipldprime.LoadSchemaBytes(paymentSchema)
	if err != nil {
		panic(fmt.Errorf("loading payment schema: %w", err))
	}
	return ts
}

func ApproveCaveatsType() schema.Type {
	return paymentTS.TypeByName("ApproveCaveats")
}

func ApproveOkType() schema.Type {
	return paymentTS.TypeByName("ApproveOk")
}

func ChargeCaveatsType() schema.Type {
	return paymentTS.TypeByName("ChargeCaveats")
}

func ChargeOkType() schema.Type {
	return paymentTS.TypeByName("ChargeOk")
}
