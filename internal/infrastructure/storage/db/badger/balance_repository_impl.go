package dbbadger

import (
	"context"
	"fmt"

	"github.com/tdex-network/escrowd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

type accountBalance struct {
	Asset   string
	Account string
	Amount  uint64
}

type balanceRepositoryImpl struct {
	store *badgerhold.Store
}

func NewBalanceRepositoryImpl(store *badgerhold.Store) ports.BalanceRepository {
	return balanceRepositoryImpl{store}
}

func (r balanceRepositoryImpl) GetBalance(
	ctx context.Context, asset, account string,
) (uint64, error) {
	balance, err := r.getBalance(ctx, asset, account)
	if err != nil {
		return 0, err
	}
	return balance.Amount, nil
}

func (r balanceRepositoryImpl) UpdateBalance(
	ctx context.Context,
	asset, account string,
	updateFn func(balance uint64) (uint64, error),
) error {
	balance, err := r.getBalance(ctx, asset, account)
	if err != nil {
		return err
	}

	amount, err := updateFn(balance.Amount)
	if err != nil {
		return err
	}
	balance.Amount = amount

	key := balanceKey(asset, account)
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxUpsert(tx, key, *balance)
	}
	return r.store.Upsert(key, *balance)
}

func (r balanceRepositoryImpl) getBalance(
	ctx context.Context, asset, account string,
) (*accountBalance, error) {
	key := balanceKey(asset, account)

	var balance accountBalance
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &balance)
	} else {
		err = r.store.Get(key, &balance)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return &accountBalance{Asset: asset, Account: account}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func balanceKey(asset, account string) string {
	return fmt.Sprintf("%s:%s", asset, account)
}
