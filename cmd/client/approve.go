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

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "invoke `payment/approve` on a PayMe service",
	Args:  cobra.NoArgs,
	RunE:  approve,
}

func init() {
	approveCmd.Flags().String(
		"spender",
		"",
		"DID of the spender being authorized to charge this account",
	)
	cobra.CheckErr(viper.BindPFlag("spender", approveCmd.Flags().Lookup("spender")))

	approveCmd.Flags().Uint64(
		"ceiling",
		0,
		"Maximum value the spender may pull in a single charge",
	)
	cobra.CheckErr(viper.BindPFlag("ceiling", approveCmd.Flags().Lookup("ceiling")))

	approveCmd.Flags().String(
		"next-charge-at",
		"",
		"RFC3339 time the first charge becomes eligible",
	)
	cobra.CheckErr(viper.BindPFlag("next_charge_at", approveCmd.Flags().Lookup("next-charge-at")))
}

func approve(cmd *cobra.Command, args []string) error {
	id, conn, err := connect()
	if err != nil {
		return err
	}

	spender, err := did.Parse(viper.GetString("spender"))
	if err != nil {
		return fmt.Errorf("parsing spender DID: %w", err)
	}

	nextChargeAt, err := time.Parse(time.RFC3339, viper.GetString("next_charge_at"))
	if err != nil {
		return fmt.Errorf("parsing next charge time: %w", err)
	}

	inv, err := capabilities.Approve.Invoke(
		id,
		conn.ID(),
		id.DID().String(),
		capabilities.ApproveCaveats{
			Spender:      spender.String(),
			Ceiling:      int64(viper.GetUint64("ceiling")),
			NextChargeAt: nextChargeAt.Unix(),
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

	reader, err := capabilities.NewApproveReceiptReader()
	if err != nil {
		return fmt.Errorf("creating receipt reader: %w", err)
	}

	rcpt, err := reader.Read(rcptLink, resp.Blocks())
	if err != nil {
		return fmt.Errorf("reading receipt: %w", err)
	}

	approveOk, failure := result.Unwrap(rcpt.Out())
	if failure.Message != "" {
		return fmt.Errorf("approval rejected: %s", failure.Message)
	}

	fmt.Printf("Approved %s\n", spender)
	fmt.Printf("  per-charge ceiling: %d\n", approveOk.Ceiling)
	fmt.Printf("  next charge at:     %s\n", time.Unix(approveOk.NextChargeAt, 0).UTC().Format(time.RFC3339))

	return nil
}
