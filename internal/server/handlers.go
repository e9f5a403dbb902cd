package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/principal/signer"
	ucanhttp "github.com/storacha/go-ucanto/transport/http"

	"github.com/storacha/payme/internal/build"
	evdb "github.com/storacha/payme/internal/db/events"
)

func (s *Server) getRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "💸 payme %s\n", build.Version)
		fmt.Fprint(w, "- https://github.com/storacha/payme\n")
		fmt.Fprintf(w, "- %s\n", s.ucantoSrv.ID().DID())
		if ws, ok := s.ucantoSrv.ID().(signer.WrappedSigner); ok {
			fmt.Fprintf(w, "- %s\n", ws.Unwrap().DID())
		}
	}
}

func (s *Server) ucanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.ucantoSrv.Request(r.Context(), ucanhttp.NewRequest(r.Body, r.Header))
		if err != nil {
			log.Errorf("handling UCAN request: %s", err)
		}

		for key, vals := range res.Headers() {
			for _, v := range vals {
				w.Header().Add(key, v)
			}
		}

		if res.Status() != 0 {
			w.WriteHeader(res.Status())
		}

		_, err = io.Copy(w, res.Body())
		if err != nil {
			log.Errorf("sending UCAN response: %s", err)
		}
	}
}

type allowanceResponse struct {
	Owner        string `json:"owner"`
	Spender      string `json:"spender"`
	Ceiling      uint64 `json:"ceiling"`
	NextChargeAt string `json:"nextChargeAt,omitempty"`
	PeriodIndex  int    `json:"periodIndex"`
}

func (s *Server) getAllowanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := did.Parse(r.URL.Query().Get("owner"))
		if err != nil {
			http.Error(w, "invalid owner DID", http.StatusBadRequest)
			return
		}

		spender, err := did.Parse(r.URL.Query().Get("spender"))
		if err != nil {
			http.Error(w, "invalid spender DID", http.StatusBadRequest)
			return
		}

		record, err := s.svc.GetAllowance(r.Context(), owner, spender)
		if err != nil {
			log.Errorf("getting allowance: %s", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		resp := allowanceResponse{
			Owner:       owner.String(),
			Spender:     spender.String(),
			Ceiling:     record.Ceiling,
			PeriodIndex: record.PeriodIndex,
		}
		if !record.NextChargeAt.IsZero() {
			resp.NextChargeAt = record.NextChargeAt.UTC().Format(time.RFC3339)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Errorf("encoding allowance response: %s", err)
		}
	}
}

type eventResponse struct {
	Owner        string `json:"owner"`
	Cause        string `json:"cause"`
	Kind         string `json:"kind"`
	Counterparty string `json:"counterparty"`
	Value        uint64 `json:"value,omitempty"`
	Ceiling      uint64 `json:"ceiling,omitempty"`
	NextChargeAt string `json:"nextChargeAt"`
	EmittedAt    string `json:"emittedAt"`
}

func (s *Server) getEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := did.Parse(r.URL.Query().Get("owner"))
		if err != nil {
			http.Error(w, "invalid owner DID", http.StatusBadRequest)
			return
		}

		c, err := cid.Decode(r.PathValue("cid"))
		if err != nil {
			http.Error(w, "invalid cause CID", http.StatusBadRequest)
			return
		}

		record, err := s.eventTable.Get(r.Context(), owner, cidlink.Link{Cid: c})
		if err != nil {
			if errors.Is(err, evdb.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			log.Errorf("getting event: %s", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(eventResponse{
			Owner:        record.Owner.String(),
			Cause:        record.Cause.String(),
			Kind:         string(record.Kind),
			Counterparty: record.Counterparty.String(),
			Value:        record.Value,
			Ceiling:      record.Ceiling,
			NextChargeAt: record.NextChargeAt.UTC().Format(time.RFC3339),
			EmittedAt:    record.EmittedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			log.Errorf("encoding event response: %s", err)
		}
	}
}

func (s *Server) getMetricsHandler() http.Handler {
	promHandler := promhttp.Handler()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.metricsEndpointToken)) != 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		promHandler.ServeHTTP(w, r)
	})
}
