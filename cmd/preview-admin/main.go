package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ipfs/go-cid"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
	"github.com/storacha/go-ucanto/ucan"

	"github.com/storacha/payme/internal/db/allowance"
	evdb "github.com/storacha/payme/internal/db/events"
	"github.com/storacha/payme/internal/events"
	"github.com/storacha/payme/internal/schedule"
	"github.com/storacha/payme/internal/service"
	"github.com/storacha/payme/internal/token"
	"github.com/storacha/payme/web"

	balancedb "github.com/storacha/payme/internal/db/balance"
)

func mustLink(s string) ucan.Link {
	c, err := cid.Decode(s)
	if err != nil {
		log.Fatal(err)
	}
	return cidlink.Link{Cid: c}
}

func main() {
	port := "8080"
	ctx := context.Background()

	id, err := ed25519.Generate()
	if err != nil {
		log.Fatal(err)
	}
	owner, err := ed25519.Generate()
	if err != nil {
		log.Fatal(err)
	}
	spender, err := ed25519.Generate()
	if err != nil {
		log.Fatal(err)
	}

	// In-memory state seeded with preview data
	allowanceTable := allowance.NewMemoryAllowanceTable()
	eventTable := evdb.NewMemoryEventTable()
	balanceTable := balancedb.NewMemoryBalanceTable()

	now := time.Now().UTC()
	approveCause := mustLink("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi")
	chargeCause := mustLink("bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku")

	if err := allowanceTable.Put(ctx, owner.DID(), spender.DID(), allowance.Record{
		Ceiling:      2500,
		NextChargeAt: now.Add(30 * 24 * time.Hour),
		PeriodIndex:  1,
	}); err != nil {
		log.Fatal(err)
	}

	if err := eventTable.Add(ctx, evdb.EventRecord{
		Owner:        owner.DID(),
		Cause:        approveCause,
		Kind:         evdb.KindApproval,
		Counterparty: spender.DID(),
		Ceiling:      2500,
		NextChargeAt: now.Add(-30 * 24 * time.Hour),
		EmittedAt:    now.Add(-31 * 24 * time.Hour),
	}); err != nil {
		log.Fatal(err)
	}

	if err := eventTable.Add(ctx, evdb.EventRecord{
		Owner:        owner.DID(),
		Cause:        chargeCause,
		Kind:         evdb.KindTransfer,
		Counterparty: spender.DID(),
		Value:        1800,
		NextChargeAt: now.Add(30 * 24 * time.Hour),
		EmittedAt:    now.Add(-12 * time.Hour),
	}); err != nil {
		log.Fatal(err)
	}

	periods, err := schedule.New([]time.Duration{30 * 24 * time.Hour})
	if err != nil {
		log.Fatal(err)
	}

	bus := events.NewBus(events.LogSink{})
	go bus.Start(ctx)

	svc, err := service.New(id, allowanceTable, periods, token.NewLedger(balanceTable, id.DID()), bus)
	if err != nil {
		log.Fatal(err)
	}

	// Create HTTP server
	mux := http.NewServeMux()

	mux.HandleFunc("/admin", web.AdminHandler(svc, eventTable))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusFound)
	})

	fmt.Printf("🎨 Admin Dashboard Preview Server\n")
	fmt.Printf("   Visit: http://localhost:%s/admin\n", port)
	fmt.Printf("   Try with: ?owner=%s&spender=%s\n\n", owner.DID(), spender.DID())

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
