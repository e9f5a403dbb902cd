package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/storacha/go-ucanto/did"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
	"github.com/storacha/go-ucanto/principal/signer"

	"github.com/storacha/payme/internal/config"
	"github.com/storacha/payme/internal/db/allowance"
	"github.com/storacha/payme/internal/db/balance"
	evdb "github.com/storacha/payme/internal/db/events"
	"github.com/storacha/payme/internal/events"
	"github.com/storacha/payme/internal/schedule"
	"github.com/storacha/payme/internal/server"
	"github.com/storacha/payme/internal/service"
	"github.com/storacha/payme/internal/token"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start PayMe",
	Args:  cobra.NoArgs,
	RunE:  startService,
}

func init() {
	startCmd.Flags().Int(
		"port",
		8080,
		"Port to listen on",
	)
	cobra.CheckErr(viper.BindPFlag("port", startCmd.Flags().Lookup("port")))

	startCmd.Flags().String(
		"private-key",
		"",
		"Private key the service will use as its identity",
	)
	cobra.CheckErr(viper.BindPFlag("private_key", startCmd.Flags().Lookup("private-key")))

	startCmd.Flags().String(
		"did",
		"",
		"did:web the service will use as its identity",
	)
	cobra.CheckErr(viper.BindPFlag("did", startCmd.Flags().Lookup("did")))

	cobra.CheckErr(viper.BindEnv("metrics_auth_token"))
	cobra.CheckErr(viper.BindEnv("admin_user"))
	cobra.CheckErr(viper.BindEnv("admin_password"))

	startCmd.Flags().String(
		"allowance-table-name",
		"",
		"Name of the DynamoDB table to use for allowance records",
	)
	cobra.CheckErr(viper.BindPFlag("allowance_table_name", startCmd.Flags().Lookup("allowance-table-name")))
	// bind flag to storoku-style environment variable
	cobra.CheckErr(viper.BindEnv("allowance_table_name", "ALLOWANCE_RECORDS_TABLE_ID"))

	startCmd.Flags().String(
		"balance-table-name",
		"",
		"Name of the DynamoDB table to use for account balances",
	)
	cobra.CheckErr(viper.BindPFlag("balance_table_name", startCmd.Flags().Lookup("balance-table-name")))
	cobra.CheckErr(viper.BindEnv("balance_table_name", "BALANCE_RECORDS_TABLE_ID"))

	startCmd.Flags().String(
		"events-table-name",
		"",
		"Name of the DynamoDB table to use for event records",
	)
	cobra.CheckErr(viper.BindPFlag("events_table_name", startCmd.Flags().Lookup("events-table-name")))
	cobra.CheckErr(viper.BindEnv("events_table_name", "EVENT_RECORDS_TABLE_ID"))

	startCmd.Flags().String(
		"period-table",
		"720h",
		"Comma-separated list of charge intervals, e.g. \"720h,720h,1440h\"",
	)
	cobra.CheckErr(viper.BindPFlag("period_table", startCmd.Flags().Lookup("period-table")))
}

func startService(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	id, err := ed25519.Parse(cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}

	if cfg.DID != "" {
		d, err := did.Parse(cfg.DID)
		if err != nil {
			return fmt.Errorf("parsing DID: %w", err)
		}
		id, err = signer.Wrap(id, d)
		if err != nil {
			return fmt.Errorf("wrapping server DID: %w", err)
		}
	}

	periods, err := schedule.Parse(cfg.PeriodTable)
	if err != nil {
		return fmt.Errorf("parsing period table: %w", err)
	}

	periodTable, err := schedule.New(periods)
	if err != nil {
		return fmt.Errorf("building period table: %w", err)
	}

	// Create DynamoDB client
	dynamoClient := dynamodb.NewFromConfig(cfg.AWSConfig)

	// Create database tables
	allowanceTable := allowance.NewDynamoAllowanceTable(dynamoClient, cfg.AllowanceTableName)
	balanceTable := balance.NewDynamoBalanceTable(dynamoClient, cfg.BalanceTableName)
	eventTable := evdb.NewDynamoEventTable(dynamoClient, cfg.EventsTableName)

	ledger := token.NewLedger(balanceTable, id.DID())

	// Create and start the event bus
	bus := events.NewBus(
		events.LogSink{},
		events.MetricsSink{},
		events.NewTableSink(eventTable),
	)
	go bus.Start(ctx)

	// Create service
	svc, err := service.New(id, allowanceTable, periodTable, ledger, bus)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	// Create server
	srv, err := server.New(id, svc, eventTable,
		server.WithMetricsEndpoint(cfg.MetricsAuthToken),
		server.WithAdminCreds(cfg.AdminUser, cfg.AdminPassword),
	)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %d", cfg.Port)
		errCh <- srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case err := <-errCh:
		log.Errorf("Server error: %v", err)
		bus.Stop()
		return err
	case sig := <-sigCh:
		log.Infof("Received signal %v, shutting down gracefully", sig)
		bus.Stop()
		cancel()
		return nil
	}
}
