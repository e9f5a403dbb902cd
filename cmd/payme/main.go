package main

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logging.Logger("payme")

const shortDescription = `
PayMe - recurring charge authorizations
`

const longDescription = `
PayMe lets account owners approve a spender to pull value from their account on a fixed
recurring schedule, up to a per-charge ceiling.
`

var (
	cfgFile string

	logLevel string

	rootCmd = &cobra.Command{
		Use:   "payme",
		Short: shortDescription,
		Long:  longDescription,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level")

	// register all commands and their subcommands
	rootCmd.AddCommand(startCmd)
}

func initConfig() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("PAYME")

	if logLevel != "" {
		ll, err := logging.LevelFromString(logLevel)
		cobra.CheckErr(err)
		logging.SetAllLoggers(ll)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		cobra.CheckErr(viper.ReadInConfig())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
