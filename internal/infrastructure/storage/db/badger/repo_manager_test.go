package dbbadger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/tdex-network/escrowd/internal/core/ports"
	dbbadger "github.com/tdex-network/escrowd/internal/infrastructure/storage/db/badger"
)

var ctx = context.Background()

func TestConfigRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	repo := repoManager.ConfigRepository()

	initialized, err := repo.IsInitialized(ctx)
	require.NoError(t, err)
	require.False(t, initialized)

	cfg, err := repo.GetConfig(ctx)
	require.ErrorIs(t, err, domain.ErrNotInitialized)
	require.Nil(t, cfg)

	err = repo.UpdateConfig(ctx, func(c *domain.Config) (*domain.Config, error) {
		return c, nil
	})
	require.ErrorIs(t, err, domain.ErrNotInitialized)

	newCfg, err := domain.NewConfig("admin", "asset", 250)
	require.NoError(t, err)

	err = repo.InitConfig(ctx, *newCfg)
	require.NoError(t, err)

	err = repo.InitConfig(ctx, *newCfg)
	require.ErrorIs(t, err, domain.ErrAlreadyInitialized)

	cfg, err = repo.GetConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, *newCfg, *cfg)

	err = repo.UpdateConfig(ctx, func(c *domain.Config) (*domain.Config, error) {
		c.FeeBps = 100
		c.TradeCounter = 3
		c.AccumulatedFees = 42
		c.FeeWithdrawals = 2
		return c, nil
	})
	require.NoError(t, err)

	cfg, err = repo.GetConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(100), cfg.FeeBps)
	require.Equal(t, uint64(3), cfg.TradeCounter)
	require.Equal(t, uint64(42), cfg.AccumulatedFees)
	require.Equal(t, uint64(2), cfg.FeeWithdrawals)

	err = repo.UpdateConfig(ctx, func(c *domain.Config) (*domain.Config, error) {
		c.Admin = "other"
		return c, nil
	})
	require.ErrorIs(t, err, dbbadger.ErrImmutableConfig)

	cfg, err = repo.GetConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, "admin", cfg.Admin)
}

func TestTradeRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	repo := repoManager.TradeRepository()

	trade, err := repo.GetTrade(ctx, 1)
	require.ErrorIs(t, err, domain.ErrTradeNotFound)
	require.Nil(t, trade)

	for i := uint64(1); i <= 300; i++ {
		trade, err := domain.NewTrade(i, "seller", "buyer", 1000*i, i, "")
		require.NoError(t, err)
		require.NoError(t, repo.AddTrade(ctx, trade))
	}

	trade, err = domain.NewTrade(1, "seller", "buyer", 1, 0, "")
	require.NoError(t, err)
	err = repo.AddTrade(ctx, trade)
	require.ErrorIs(t, err, dbbadger.ErrTradeAlreadyExists)

	trades, err := repo.GetAllTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 300)
	for i, tr := range trades {
		require.Equal(t, uint64(i+1), tr.ID)
	}

	err = repo.UpdateTrade(ctx, 2, func(t *domain.Trade) (*domain.Trade, error) {
		if err := t.Fund(); err != nil {
			return nil, err
		}
		return t, nil
	})
	require.NoError(t, err)

	err = repo.UpdateTrade(ctx, 2, func(t *domain.Trade) (*domain.Trade, error) {
		if err := t.Cancel(); err != nil {
			return nil, err
		}
		return t, nil
	})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	trade, err = repo.GetTrade(ctx, 2)
	require.NoError(t, err)
	require.True(t, trade.IsFunded())
	require.Equal(t, uint64(2000), trade.Amount)

	funded, err := repo.GetTradesByStatus(ctx, domain.TradeStatusFunded)
	require.NoError(t, err)
	require.Len(t, funded, 1)
	require.Equal(t, uint64(2), funded[0].ID)
}

func TestArbitratorRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	repo := repoManager.ArbitratorRepository()

	ok, err := repo.IsRegistered(ctx, "arb1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.AddArbitrator(ctx, "arb1"))
	require.NoError(t, repo.AddArbitrator(ctx, "arb1"))
	require.NoError(t, repo.AddArbitrator(ctx, "arb2"))

	ok, err = repo.IsRegistered(ctx, "arb1")
	require.NoError(t, err)
	require.True(t, ok)

	all, err := repo.GetAllArbitrators(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"arb1", "arb2"}, all)

	require.NoError(t, repo.RemoveArbitrator(ctx, "arb1"))
	require.NoError(t, repo.RemoveArbitrator(ctx, "arb1"))
	require.NoError(t, repo.RemoveArbitrator(ctx, "unknown"))

	ok, err = repo.IsRegistered(ctx, "arb1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEventRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	repo := repoManager.EventRepository()

	seq, err := repo.GetLatestSeq(ctx)
	require.NoError(t, err)
	require.Zero(t, seq)

	for i := uint64(1); i <= 200; i++ {
		seq, err := repo.AddEvent(ctx, domain.NewTradeFundedEvent(i))
		require.NoError(t, err)
		require.Equal(t, i, seq)
	}

	events, err := repo.GetEventsAfter(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 200)

	events, err = repo.GetEventsAfter(ctx, 150, 10)
	require.NoError(t, err)
	require.Len(t, events, 10)
	for i, e := range events {
		require.Equal(t, uint64(151+i), e.Seq)
		require.Equal(t, e.Seq, e.TradeID)
		require.Equal(t, domain.TopicTradeFunded, e.Topic)
	}

	events, err = repo.GetEventsAfter(ctx, 200, 10)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestNonceRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	repo := repoManager.NonceRepository()

	nonce, err := repo.GetNonce(ctx, "account")
	require.NoError(t, err)
	require.Zero(t, nonce)

	require.NoError(t, repo.UpdateNonce(ctx, "account", 5))

	err = repo.UpdateNonce(ctx, "account", 5)
	require.ErrorIs(t, err, ports.ErrNonceAlreadyUsed)
	err = repo.UpdateNonce(ctx, "account", 4)
	require.ErrorIs(t, err, ports.ErrNonceAlreadyUsed)

	require.NoError(t, repo.UpdateNonce(ctx, "account", 6))
	nonce, err = repo.GetNonce(ctx, "account")
	require.NoError(t, err)
	require.Equal(t, uint64(6), nonce)
}

func TestBalanceRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	repo := repoManager.BalanceRepository()

	balance, err := repo.GetBalance(ctx, "asset", "account")
	require.NoError(t, err)
	require.Zero(t, balance)

	err = repo.UpdateBalance(ctx, "asset", "account", func(b uint64) (uint64, error) {
		return b + 100, nil
	})
	require.NoError(t, err)

	balance, err = repo.GetBalance(ctx, "asset", "account")
	require.NoError(t, err)
	require.Equal(t, uint64(100), balance)

	balance, err = repo.GetBalance(ctx, "other", "account")
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestRunTransaction(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		repoManager := newTestRepoManager(t)

		_, err := repoManager.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				if err := repoManager.ArbitratorRepository().AddArbitrator(
					ctx, "arb",
				); err != nil {
					return nil, err
				}
				return repoManager.EventRepository().AddEvent(
					ctx, domain.NewArbitratorRegisteredEvent("arb"),
				)
			},
		)
		require.NoError(t, err)

		ok, err := repoManager.ArbitratorRepository().IsRegistered(ctx, "arb")
		require.NoError(t, err)
		require.True(t, ok)

		seq, err := repoManager.EventRepository().GetLatestSeq(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), seq)
	})

	t.Run("discard", func(t *testing.T) {
		repoManager := newTestRepoManager(t)
		expectedErr := errors.New("failure")

		_, err := repoManager.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				if err := repoManager.ArbitratorRepository().AddArbitrator(
					ctx, "arb",
				); err != nil {
					return nil, err
				}
				if _, err := repoManager.EventRepository().AddEvent(
					ctx, domain.NewArbitratorRegisteredEvent("arb"),
				); err != nil {
					return nil, err
				}
				return nil, expectedErr
			},
		)
		require.ErrorIs(t, err, expectedErr)

		ok, err := repoManager.ArbitratorRepository().IsRegistered(ctx, "arb")
		require.NoError(t, err)
		require.False(t, ok)

		seq, err := repoManager.EventRepository().GetLatestSeq(ctx)
		require.NoError(t, err)
		require.Zero(t, seq)
	})

	t.Run("nested", func(t *testing.T) {
		repoManager := newTestRepoManager(t)
		expectedErr := errors.New("failure")

		_, err := repoManager.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				if _, err := repoManager.RunTransaction(
					ctx, false, func(ctx context.Context) (interface{}, error) {
						return nil, repoManager.ArbitratorRepository().AddArbitrator(
							ctx, "arb",
						)
					},
				); err != nil {
					return nil, err
				}
				return nil, expectedErr
			},
		)
		require.ErrorIs(t, err, expectedErr)

		ok, err := repoManager.ArbitratorRepository().IsRegistered(ctx, "arb")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("serialized", func(t *testing.T) {
		repoManager := newTestRepoManager(t)
		count := 50

		wg := &sync.WaitGroup{}
		wg.Add(count)
		for i := 0; i < count; i++ {
			go func() {
				defer wg.Done()
				_, err := repoManager.RunTransaction(
					ctx, false, func(ctx context.Context) (interface{}, error) {
						return repoManager.EventRepository().AddEvent(
							ctx, domain.NewFeeUpdatedEvent(1),
						)
					},
				)
				require.NoError(t, err)
			}()
		}
		wg.Wait()

		seq, err := repoManager.EventRepository().GetLatestSeq(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(count), seq)
	})
}

func newTestRepoManager(t *testing.T) ports.RepoManager {
	repoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)
	return repoManager
}
