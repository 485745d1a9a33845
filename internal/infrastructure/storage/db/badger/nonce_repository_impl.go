package dbbadger

import (
	"context"

	"github.com/tdex-network/escrowd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

type accountNonce struct {
	Account string
	Nonce   uint64
}

type nonceRepositoryImpl struct {
	store *badgerhold.Store
}

func NewNonceRepositoryImpl(store *badgerhold.Store) ports.NonceRepository {
	return nonceRepositoryImpl{store}
}

func (r nonceRepositoryImpl) GetNonce(
	ctx context.Context, account string,
) (uint64, error) {
	var record accountNonce
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, account, &record)
	} else {
		err = r.store.Get(account, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return record.Nonce, nil
}

func (r nonceRepositoryImpl) UpdateNonce(
	ctx context.Context, account string, nonce uint64,
) error {
	last, err := r.GetNonce(ctx, account)
	if err != nil {
		return err
	}
	if nonce <= last {
		return ports.ErrNonceAlreadyUsed
	}

	record := accountNonce{account, nonce}
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxUpsert(tx, account, record)
	}
	return r.store.Upsert(account, record)
}
