package localtransfer_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/escrowd/internal/core/ports"
	dbbadger "github.com/tdex-network/escrowd/internal/infrastructure/storage/db/badger"
	localtransfer "github.com/tdex-network/escrowd/internal/infrastructure/transfer/local"
	"github.com/tdex-network/escrowd/pkg/mathutil"
)

const asset = "asset"

var ctx = context.Background()

func TestTransfer(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Deposit(ctx, asset, "alice", 1000))

	err := svc.Transfer(ctx, "ref", asset, "alice", "bob", 400)
	require.NoError(t, err)

	requireBalance(t, svc, "alice", 600)
	requireBalance(t, svc, "bob", 400)

	err = svc.Transfer(ctx, "ref", asset, "bob", "bob", 400)
	require.NoError(t, err)
	requireBalance(t, svc, "bob", 400)
}

func TestFailingTransfer(t *testing.T) {
	t.Run("insufficient_balance", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.Deposit(ctx, asset, "alice", 100))

		err := svc.Transfer(ctx, "ref", asset, "alice", "bob", 101)
		require.ErrorIs(t, err, ports.ErrInsufficientBalance)

		requireBalance(t, svc, "alice", 100)
		requireBalance(t, svc, "bob", 0)
	})

	t.Run("overflow", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.Deposit(ctx, asset, "alice", 100))
		require.NoError(t, svc.Deposit(ctx, asset, "bob", math.MaxUint64))

		err := svc.Transfer(ctx, "ref", asset, "alice", "bob", 1)
		require.ErrorIs(t, err, mathutil.ErrOverflow)

		requireBalance(t, svc, "alice", 100)
	})

	t.Run("missing_account", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.Transfer(ctx, "ref", asset, "", "bob", 1)
		require.Error(t, err)
	})
}

func TestTransferJoinsTransaction(t *testing.T) {
	svc, repoManager := newTestService(t)
	require.NoError(t, svc.Deposit(ctx, asset, "alice", 100))

	expectedErr := errors.New("failure")
	_, err := repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := svc.Transfer(
				ctx, "ref", asset, "alice", "bob", 100,
			); err != nil {
				return nil, err
			}
			return nil, expectedErr
		},
	)
	require.ErrorIs(t, err, expectedErr)

	requireBalance(t, svc, "alice", 100)
	requireBalance(t, svc, "bob", 0)
}

func requireBalance(
	t *testing.T, svc *localtransfer.Service, account string, expected uint64,
) {
	balance, err := svc.Balance(ctx, asset, account)
	require.NoError(t, err)
	require.Equal(t, expected, balance)
}

func newTestService(t *testing.T) (*localtransfer.Service, ports.RepoManager) {
	repoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)

	svc, err := localtransfer.NewService(repoManager)
	require.NoError(t, err)
	return svc, repoManager
}
