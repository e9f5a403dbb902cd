package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/storacha/go-ucanto/client"
	"github.com/storacha/go-ucanto/core/delegation"
	"github.com/storacha/go-ucanto/core/invocation"
	"github.com/storacha/go-ucanto/core/result"
	"github.com/storacha/go-ucanto/did"

	"github.com/storacha/payme/internal/capabilities"
)

var chargeCmd = &cobra.Command{
	Use:   "charge",
	Short: "invoke `payment/charge` on a PayMe service",
	Args:  cobra.NoArgs,
	RunE:  charge,
}

func init() {
	chargeCmd.Flags().String(
		"from",
		"",
		"DID of the account owner to charge",
	)
	cobra.CheckErr(viper.BindPFlag("from", chargeCmd.Flags().Lookup("from")))

	chargeCmd.Flags().Uint64(
		"value",
		0,
		"Value to pull from the owner's account",
	)
	cobra.CheckErr(viper.BindPFlag("value", chargeCmd.Flags().Lookup("value")))
}

func charge(cmd *cobra.Command, args []string) error {
	id, conn, err := connect()
	if err != nil {
		return err
	}

	from, err := did.Parse(viper.GetString("from"))
	if err != nil {
		return fmt.Errorf("parsing owner DID: %w", err)
	}

	inv, err := capabilities.Charge.Invoke(
		id,
		conn.ID(),
		id.DID().String(),
		capabilities.ChargeCaveats{
			From:  from.String(),
			Value: int64(viper.GetUint64("value")),
		},
		delegation.WithNoExpiration(),
	)
	if err != nil {
		return fmt.Errorf("building invocation: %w", err)
	}

	resp, err := client.Execute(cmd.Context(), []invocation.Invocation{inv}, conn)
	if err != nil {
		return fmt.Errorf("executing invocation: %w", err)
	}

	rcptLink, ok := resp.Get(inv.Link())
	if !ok {
		return fmt.Errorf("missing receipt for invocation %s", inv.Link())
	}

	reader, err := capabilities.NewChargeReceiptReader()
	if err != nil {
		return fmt.Errorf("creating receipt reader: %w", err)
	}

	rcpt, err := reader.Read(rcptLink, resp.Blocks())
	if err != nil {
		return fmt.Errorf("reading receipt: %w", err)
	}

	chargeOk, failure := result.Unwrap(rcpt.Out())
	if failure.Message != "" {
		return fmt.Errorf("charge rejected: %s", failure.Message)
	}

	fmt.Printf("Charged %s\n", from)
	fmt.Printf("  value:          %d\n", chargeOk.Value)
	fmt.Printf("  next charge at: %s\n", time.Unix(chargeOk.NextChargeAt, 0).UTC().Format(time.RFC3339))
	fmt.Printf("  period index:   %d\n", chargeOk.PeriodIndex)

	return nil
}
