package escrow_test

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/escrowd/internal/core/application/escrow"
	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/tdex-network/escrowd/internal/core/ports"
	"github.com/tdex-network/escrowd/internal/infrastructure/auth"
	dbbadger "github.com/tdex-network/escrowd/internal/infrastructure/storage/db/badger"
	localtransfer "github.com/tdex-network/escrowd/internal/infrastructure/transfer/local"
)

const (
	valueAsset = "usdc"
	custody    = "escrow"
)

var bg = context.Background()

// account is a test signer keeping track of its own nonces.
type account struct {
	key   *btcec.PrivateKey
	id    string
	nonce uint64
}

func newAccount(t *testing.T) *account {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return &account{key: key, id: auth.Account(key.PubKey())}
}

// ctx returns a context carrying a proof of the account for the given
// invocation.
func (a *account) ctx(
	t *testing.T, method string, args ...interface{},
) context.Context {
	a.nonce++
	proof, err := auth.Sign(a.key, escrow.NewInvocation(method, args...), a.nonce)
	require.NoError(t, err)
	return auth.WithInvocation(bg, a.id, *proof)
}

type testEnv struct {
	svc         *escrow.Service
	ledger      *localtransfer.Service
	repoManager ports.RepoManager

	admin, seller, buyer, arbitrator, stranger *account
}

func newTestEnv(t *testing.T) *testEnv {
	repoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)

	ledger, err := localtransfer.NewService(repoManager)
	require.NoError(t, err)

	authorizer, err := auth.NewAuthorizer(repoManager.NonceRepository())
	require.NoError(t, err)

	svc, err := escrow.NewService(repoManager, ledger, authorizer, custody)
	require.NoError(t, err)

	return &testEnv{
		svc:         svc,
		ledger:      ledger,
		repoManager: repoManager,
		admin:       newAccount(t),
		seller:      newAccount(t),
		buyer:       newAccount(t),
		arbitrator:  newAccount(t),
		stranger:    newAccount(t),
	}
}

// newInitializedTestEnv returns an env with the escrow initialized with the
// given fee and the buyer holding the given balance.
func newInitializedTestEnv(
	t *testing.T, feeBps uint32, buyerBalance uint64,
) *testEnv {
	env := newTestEnv(t)

	err := env.svc.Initialize(
		env.admin.ctx(t, escrow.MethodInitialize, env.admin.id, valueAsset, feeBps),
		env.admin.id, valueAsset, feeBps,
	)
	require.NoError(t, err)

	if buyerBalance > 0 {
		err = env.ledger.Deposit(bg, valueAsset, env.buyer.id, buyerBalance)
		require.NoError(t, err)
	}
	return env
}

func (e *testEnv) registerArbitrator(t *testing.T) {
	err := e.svc.RegisterArbitrator(
		e.admin.ctx(t, escrow.MethodRegisterArbitrator, e.arbitrator.id),
		e.arbitrator.id,
	)
	require.NoError(t, err)
}

func (e *testEnv) createTrade(
	t *testing.T, amount uint64, arbitrator string,
) uint64 {
	tradeID, err := e.svc.CreateTrade(
		e.seller.ctx(
			t, escrow.MethodCreateTrade, e.seller.id, e.buyer.id, amount, arbitrator,
		),
		e.seller.id, e.buyer.id, amount, arbitrator,
	)
	require.NoError(t, err)
	return tradeID
}

func (e *testEnv) fundTrade(t *testing.T, tradeID uint64) error {
	return e.svc.FundTrade(
		e.buyer.ctx(t, escrow.MethodFundTrade, tradeID), tradeID,
	)
}

func (e *testEnv) completeTrade(t *testing.T, tradeID uint64) error {
	return e.svc.CompleteTrade(
		e.seller.ctx(t, escrow.MethodCompleteTrade, tradeID), tradeID,
	)
}

func (e *testEnv) confirmReceipt(t *testing.T, tradeID uint64) error {
	return e.svc.ConfirmReceipt(
		e.buyer.ctx(t, escrow.MethodConfirmReceipt, tradeID), tradeID,
	)
}

func (e *testEnv) cancelTrade(t *testing.T, tradeID uint64) error {
	return e.svc.CancelTrade(
		e.seller.ctx(t, escrow.MethodCancelTrade, tradeID), tradeID,
	)
}

func (e *testEnv) raiseDispute(
	t *testing.T, by *account, tradeID uint64,
) error {
	return e.svc.RaiseDispute(
		by.ctx(t, escrow.MethodRaiseDispute, tradeID), tradeID,
	)
}

func (e *testEnv) resolveDispute(
	t *testing.T, tradeID uint64, resolution domain.DisputeResolution,
) error {
	return e.svc.ResolveDispute(
		e.arbitrator.ctx(t, escrow.MethodResolveDispute, tradeID, resolution),
		tradeID, resolution,
	)
}

func (e *testEnv) balance(t *testing.T, account string) uint64 {
	balance, err := e.ledger.Balance(bg, valueAsset, account)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) accumulatedFees(t *testing.T) uint64 {
	fees, err := e.svc.GetAccumulatedFees(bg)
	require.NoError(t, err)
	return fees
}

func (e *testEnv) tradeStatus(t *testing.T, tradeID uint64) domain.TradeStatus {
	trade, err := e.svc.GetTrade(bg, tradeID)
	require.NoError(t, err)
	return trade.Status
}

func (e *testEnv) topics(t *testing.T) []string {
	events, err := e.svc.ListEvents(bg, 0, 0)
	require.NoError(t, err)
	topics := make([]string, 0, len(events))
	for _, e := range events {
		topics = append(topics, e.Topic)
	}
	return topics
}
