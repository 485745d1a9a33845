package httpinterface_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/escrowd/internal/core/application/escrow"
	"github.com/tdex-network/escrowd/internal/core/application/pubsub"
	"github.com/tdex-network/escrowd/internal/infrastructure/auth"
	pubsubinfra "github.com/tdex-network/escrowd/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/escrowd/internal/infrastructure/storage/db/badger"
	localtransfer "github.com/tdex-network/escrowd/internal/infrastructure/transfer/local"
	httpinterface "github.com/tdex-network/escrowd/internal/interfaces/http"
)

const (
	valueAsset = "usdc"
	custody    = "escrow"
)

type signer struct {
	key   *btcec.PrivateKey
	id    string
	nonce uint64
}

func newSigner(t *testing.T) *signer {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return &signer{key: key, id: auth.Account(key.PubKey())}
}

func (s *signer) proof(
	t *testing.T, method string, args ...interface{},
) auth.Proof {
	s.nonce++
	proof, err := auth.Sign(s.key, escrow.NewInvocation(method, args...), s.nonce)
	require.NoError(t, err)
	return *proof
}

type response struct {
	code int
	body map[string]interface{}
}

func (r response) errorCode() int {
	code, _ := r.body["code"].(float64)
	return int(code)
}

func newTestHandler(t *testing.T) http.Handler {
	return newTestHandlerWithLedger(t, true)
}

func newTestHandlerWithLedger(t *testing.T, devLedger bool) http.Handler {
	repoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)

	ledger, err := localtransfer.NewService(repoManager)
	require.NoError(t, err)
	authorizer, err := auth.NewAuthorizer(repoManager.NonceRepository())
	require.NoError(t, err)
	escrowSvc, err := escrow.NewService(repoManager, ledger, authorizer, custody)
	require.NoError(t, err)

	pubsubInfra, err := pubsubinfra.NewService("", nil)
	require.NoError(t, err)
	pubsubSvc, err := pubsub.NewService(pubsubInfra, repoManager, 0)
	require.NoError(t, err)
	t.Cleanup(pubsubSvc.Close)

	var devEndpoints httpinterface.Ledger
	if devLedger {
		devEndpoints = ledger
	}
	server, err := httpinterface.NewServer(0, escrowSvc, pubsubSvc, devEndpoints)
	require.NoError(t, err)
	return server.Handler()
}

func do(
	t *testing.T, handler http.Handler, method, path string, body interface{},
) response {
	var reqBody *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(buf)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	res := response{code: rec.Code}
	if rec.Body.Len() > 0 && strings.HasPrefix(
		rec.Header().Get("Content-Type"), "application/json",
	) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res.body))
	}
	return res
}

func TestEscrowAPI(t *testing.T) {
	handler := newTestHandler(t)
	admin, seller, buyer, arbitrator := newSigner(t), newSigner(t),
		newSigner(t), newSigner(t)

	res := do(t, handler, http.MethodGet, "/v1/info", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, false, res.body["initialized"])
	require.Equal(t, custody, res.body["custody_account"])

	res = do(t, handler, http.MethodGet, "/v1/fee", nil)
	require.Equal(t, http.StatusConflict, res.code)
	require.Equal(t, 2, res.errorCode())

	res = do(t, handler, http.MethodPost, "/v1/initialize", map[string]interface{}{
		"admin":       admin.id,
		"value_asset": valueAsset,
		"fee_bps":     250,
		"proof":       admin.proof(t, escrow.MethodInitialize, admin.id, valueAsset, 250),
	})
	require.Equal(t, http.StatusNoContent, res.code)

	res = do(t, handler, http.MethodPost, "/v1/initialize", map[string]interface{}{
		"admin":       admin.id,
		"value_asset": valueAsset,
		"fee_bps":     250,
		"proof":       admin.proof(t, escrow.MethodInitialize, admin.id, valueAsset, 250),
	})
	require.Equal(t, http.StatusConflict, res.code)
	require.Equal(t, 1, res.errorCode())

	res = do(t, handler, http.MethodGet, "/v1/fee", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, float64(250), res.body["fee_bps"])
	require.Equal(t, "2.5", res.body["fee_percentage"])

	res = do(t, handler, http.MethodPost, "/v1/arbitrators", map[string]interface{}{
		"address": arbitrator.id,
		"proof":   admin.proof(t, escrow.MethodRegisterArbitrator, arbitrator.id),
	})
	require.Equal(t, http.StatusNoContent, res.code)

	res = do(t, handler, http.MethodGet, "/v1/arbitrators/"+arbitrator.id, nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, true, res.body["registered"])

	res = do(t, handler, http.MethodPost, "/v1/ledger/deposit", map[string]interface{}{
		"asset":   valueAsset,
		"account": buyer.id,
		"amount":  10000,
	})
	require.Equal(t, http.StatusNoContent, res.code)

	res = do(t, handler, http.MethodPost, "/v1/trades", map[string]interface{}{
		"seller":     seller.id,
		"buyer":      buyer.id,
		"amount":     10000,
		"arbitrator": arbitrator.id,
		"proof": seller.proof(
			t, escrow.MethodCreateTrade, seller.id, buyer.id, 10000, arbitrator.id,
		),
	})
	require.Equal(t, http.StatusCreated, res.code)
	require.Equal(t, float64(1), res.body["trade_id"])

	res = do(t, handler, http.MethodGet, "/v1/trades?status=open", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Len(t, res.body["trades"], 1)

	// Funding without the buyer's proof.
	res = do(t, handler, http.MethodPost, "/v1/trades/1/fund", map[string]interface{}{
		"proof": seller.proof(t, escrow.MethodFundTrade, 1),
	})
	require.Equal(t, http.StatusUnauthorized, res.code)

	steps := []struct {
		action string
		signer *signer
		method string
	}{
		{"fund", buyer, escrow.MethodFundTrade},
		{"complete", seller, escrow.MethodCompleteTrade},
		{"confirm", buyer, escrow.MethodConfirmReceipt},
	}
	for _, step := range steps {
		res = do(
			t, handler, http.MethodPost, fmt.Sprintf("/v1/trades/1/%s", step.action),
			map[string]interface{}{"proof": step.signer.proof(t, step.method, 1)},
		)
		require.Equal(t, http.StatusNoContent, res.code, step.action)
	}

	res = do(t, handler, http.MethodPost, "/v1/trades/1/confirm", map[string]interface{}{
		"proof": buyer.proof(t, escrow.MethodConfirmReceipt, 1),
	})
	require.Equal(t, http.StatusConflict, res.code)
	require.Equal(t, 7, res.errorCode())

	res = do(t, handler, http.MethodGet, "/v1/trades/1", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, "Confirmed", res.body["status"])
	require.Equal(t, float64(250), res.body["fee"])

	res = do(
		t, handler, http.MethodGet,
		fmt.Sprintf("/v1/ledger/balance?asset=%s&account=%s", valueAsset, seller.id),
		nil,
	)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, float64(9750), res.body["balance"])

	res = do(t, handler, http.MethodGet, "/v1/fees", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, float64(250), res.body["accumulated_fees"])

	res = do(t, handler, http.MethodPost, "/v1/fees/withdraw", map[string]interface{}{
		"to":    admin.id,
		"proof": admin.proof(t, escrow.MethodWithdrawFees, admin.id),
	})
	require.Equal(t, http.StatusNoContent, res.code)

	res = do(t, handler, http.MethodGet, "/v1/trades?status=confirmed", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Len(t, res.body["trades"], 1)

	res = do(t, handler, http.MethodGet, "/v1/trades?status=open", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Empty(t, res.body["trades"])

	res = do(t, handler, http.MethodGet, "/v1/events?after=2&limit=2", nil)
	require.Equal(t, http.StatusOK, res.code)
	events := res.body["events"].([]interface{})
	require.Len(t, events, 2)
	require.Equal(t, "created", events[0].(map[string]interface{})["topic"])
}

func TestRaiseAndResolveDispute(t *testing.T) {
	handler := newTestHandler(t)
	admin, seller, buyer, arbitrator, stranger := newSigner(t), newSigner(t),
		newSigner(t), newSigner(t), newSigner(t)

	requests := []struct {
		path string
		body map[string]interface{}
	}{
		{"/v1/initialize", map[string]interface{}{
			"admin": admin.id, "value_asset": valueAsset, "fee_bps": 0,
			"proof": admin.proof(t, escrow.MethodInitialize, admin.id, valueAsset, 0),
		}},
		{"/v1/arbitrators", map[string]interface{}{
			"address": arbitrator.id,
			"proof":   admin.proof(t, escrow.MethodRegisterArbitrator, arbitrator.id),
		}},
		{"/v1/ledger/deposit", map[string]interface{}{
			"asset": valueAsset, "account": buyer.id, "amount": 500,
		}},
		{"/v1/trades", map[string]interface{}{
			"seller": seller.id, "buyer": buyer.id, "amount": 500,
			"arbitrator": arbitrator.id,
			"proof": seller.proof(
				t, escrow.MethodCreateTrade, seller.id, buyer.id, 500, arbitrator.id,
			),
		}},
		{"/v1/trades/1/fund", map[string]interface{}{
			"proof": buyer.proof(t, escrow.MethodFundTrade, 1),
		}},
	}
	for _, r := range requests {
		res := do(t, handler, http.MethodPost, r.path, r.body)
		require.Less(t, res.code, 300, r.path)
	}

	res := do(t, handler, http.MethodPost, "/v1/trades/1/dispute", map[string]interface{}{
		"proof": stranger.proof(t, escrow.MethodRaiseDispute, 1),
	})
	require.Equal(t, http.StatusForbidden, res.code)
	require.Equal(t, 10, res.errorCode())

	res = do(t, handler, http.MethodPost, "/v1/trades/1/dispute", map[string]interface{}{
		"proof": buyer.proof(t, escrow.MethodRaiseDispute, 1),
	})
	require.Equal(t, http.StatusNoContent, res.code)

	res = do(t, handler, http.MethodPost, "/v1/trades/1/resolve", map[string]interface{}{
		"resolution": "ReleaseToNobody",
		"proof":      arbitrator.proof(t, escrow.MethodResolveDispute, 1, "ReleaseToNobody"),
	})
	require.Equal(t, http.StatusBadRequest, res.code)
	require.Equal(t, 12, res.errorCode())

	res = do(t, handler, http.MethodPost, "/v1/trades/1/resolve", map[string]interface{}{
		"resolution": "ReleaseToBuyer",
		"proof":      arbitrator.proof(t, escrow.MethodResolveDispute, 1, "ReleaseToBuyer"),
	})
	require.Equal(t, http.StatusNoContent, res.code)

	res = do(
		t, handler, http.MethodGet,
		fmt.Sprintf("/v1/ledger/balance?asset=%s&account=%s", valueAsset, buyer.id),
		nil,
	)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, float64(500), res.body["balance"])
}

func TestLedgerRoutesDisabled(t *testing.T) {
	handler := newTestHandlerWithLedger(t, false)

	res := do(t, handler, http.MethodPost, "/v1/ledger/deposit", map[string]interface{}{
		"asset": valueAsset, "account": "anyone", "amount": 1000,
	})
	require.Equal(t, http.StatusNotFound, res.code)

	res = do(t, handler, http.MethodGet,
		fmt.Sprintf("/v1/ledger/balance?asset=%s&account=anyone", valueAsset), nil,
	)
	require.Equal(t, http.StatusNotFound, res.code)

	res = do(t, handler, http.MethodGet, "/v1/info", nil)
	require.Equal(t, http.StatusOK, res.code)
}

func TestInvalidRequests(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"trade_not_found", http.MethodGet, "/v1/trades/42", nil, http.StatusNotFound},
		{"invalid_trade_id", http.MethodGet, "/v1/trades/abc", nil, http.StatusBadRequest},
		{"invalid_status", http.MethodGet, "/v1/trades?status=settled", nil, http.StatusBadRequest},
		{"missing_body", http.MethodPost, "/v1/trades/1/fund", nil, http.StatusBadRequest},
		{"invalid_events_cursor", http.MethodGet, "/v1/events?after=-1", nil, http.StatusBadRequest},
		{"missing_balance_account", http.MethodGet, "/v1/ledger/balance?asset=usdc", nil, http.StatusBadRequest},
		{
			"invalid_webhook_topic", http.MethodPost, "/v1/webhooks",
			map[string]string{"topic": "settled", "endpoint": "http://localhost/hook"},
			http.StatusBadRequest,
		},
		{"unknown_webhook", http.MethodDelete, "/v1/webhooks/unknown", nil, http.StatusNotFound},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, handler, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, res.code)
			require.NotEmpty(t, res.body["error"])
		})
	}
}

func TestWebhooksAPI(t *testing.T) {
	handler := newTestHandler(t)

	res := do(t, handler, http.MethodPost, "/v1/webhooks", map[string]string{
		"topic":    "confirmed",
		"endpoint": "http://localhost:8080/hook",
		"secret":   "secret",
	})
	require.Equal(t, http.StatusCreated, res.code)
	id := res.body["id"].(string)

	res = do(t, handler, http.MethodGet, "/v1/webhooks?topic=confirmed", nil)
	require.Equal(t, http.StatusOK, res.code)
	webhooks := res.body["webhooks"].([]interface{})
	require.Len(t, webhooks, 1)
	webhook := webhooks[0].(map[string]interface{})
	require.Equal(t, id, webhook["id"])
	require.Equal(t, true, webhook["is_secured"])

	res = do(t, handler, http.MethodDelete, "/v1/webhooks/"+id, nil)
	require.Equal(t, http.StatusNoContent, res.code)

	res = do(t, handler, http.MethodGet, "/v1/webhooks", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Empty(t, res.body["webhooks"])
}

func TestMetrics(t *testing.T) {
	handler := newTestHandler(t)

	do(t, handler, http.MethodGet, "/v1/info", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "escrowd_http_requests_total")
}
