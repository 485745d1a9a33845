package dbbadger

import (
	"context"
	"sort"

	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// arbitrator is the presence record of a registered arbitrator.
type arbitrator struct {
	Address string
}

type arbitratorRepositoryImpl struct {
	store *badgerhold.Store
}

func NewArbitratorRepositoryImpl(
	store *badgerhold.Store,
) domain.ArbitratorRepository {
	return arbitratorRepositoryImpl{store}
}

func (r arbitratorRepositoryImpl) AddArbitrator(
	ctx context.Context, address string,
) error {
	record := arbitrator{address}
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxUpsert(tx, address, record)
	}
	return r.store.Upsert(address, record)
}

func (r arbitratorRepositoryImpl) RemoveArbitrator(
	ctx context.Context, address string,
) error {
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxDelete(tx, address, arbitrator{})
	} else {
		err = r.store.Delete(address, arbitrator{})
	}
	if err != nil && err != badgerhold.ErrNotFound {
		return err
	}
	return nil
}

func (r arbitratorRepositoryImpl) IsRegistered(
	ctx context.Context, address string,
) (bool, error) {
	if len(address) <= 0 {
		return false, nil
	}

	var record arbitrator
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, address, &record)
	} else {
		err = r.store.Get(address, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r arbitratorRepositoryImpl) GetAllArbitrators(
	ctx context.Context,
) ([]string, error) {
	var records []arbitrator
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &records, nil)
	} else {
		err = r.store.Find(&records, nil)
	}
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(records))
	for _, r := range records {
		addresses = append(addresses, r.Address)
	}
	sort.Strings(addresses)
	return addresses, nil
}
