package main

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logging.Logger("client")

const shortDescription = `
PayMe Client - Send payment invocations to a PayMe service
`

const longDescription = `
The payme client builds and sends payment/approve and payment/charge invocations to a
PayMe service and prints the receipts.
`

var (
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "payclient",
		Short: shortDescription,
		Long:  longDescription,
	}
)

func init() {
	cobra.OnInitialize(func() {
		ll, err := logging.LevelFromString(logLevel)
		cobra.CheckErr(err)
		logging.SetAllLoggers(ll)
	})

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "debug", "logging level")

	rootCmd.PersistentFlags().String(
		"private-key",
		"",
		"Private key the client will use as its identity",
	)
	cobra.CheckErr(viper.BindPFlag("private_key", rootCmd.PersistentFlags().Lookup("private-key")))

	rootCmd.PersistentFlags().String(
		"payme-did",
		"",
		"DID of the PayMe service",
	)
	cobra.CheckErr(viper.BindPFlag("payme_did", rootCmd.PersistentFlags().Lookup("payme-did")))

	rootCmd.PersistentFlags().String(
		"payme-url",
		"http://localhost:8080",
		"URL of the PayMe service",
	)
	cobra.CheckErr(viper.BindPFlag("payme_url", rootCmd.PersistentFlags().Lookup("payme-url")))

	// register all commands and their subcommands
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(chargeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
