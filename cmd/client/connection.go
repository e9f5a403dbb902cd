package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"
	"github.com/storacha/go-ucanto/client"
	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/principal"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
	ucanhttp "github.com/storacha/go-ucanto/transport/http"
)

// connect parses the shared identity and endpoint flags and opens a UCAN
// connection to the service.
func connect() (principal.Signer, client.Connection, error) {
	id, err := ed25519.Parse(viper.GetString("private_key"))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing private key: %w", err)
	}

	serviceDID, err := did.Parse(viper.GetString("payme_did"))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing service DID: %w", err)
	}

	serviceURL, err := url.Parse(viper.GetString("payme_url"))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing service URL: %w", err)
	}

	channel := ucanhttp.NewChannel(serviceURL)

	conn, err := client.NewConnection(serviceDID, channel)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection: %w", err)
	}

	return id, conn, nil
}
