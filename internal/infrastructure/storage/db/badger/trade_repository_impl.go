package dbbadger

import (
	"context"
	"sort"

	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type tradeRepositoryImpl struct {
	store *badgerhold.Store
}

func NewTradeRepositoryImpl(store *badgerhold.Store) domain.TradeRepository {
	return tradeRepositoryImpl{store}
}

func (r tradeRepositoryImpl) AddTrade(
	ctx context.Context, trade *domain.Trade,
) error {
	return r.insertTrade(ctx, *trade)
}

func (r tradeRepositoryImpl) GetTrade(
	ctx context.Context, tradeID uint64,
) (*domain.Trade, error) {
	return r.getTrade(ctx, tradeID)
}

func (r tradeRepositoryImpl) GetAllTrades(
	ctx context.Context,
) ([]domain.Trade, error) {
	return r.findTrades(ctx, nil)
}

func (r tradeRepositoryImpl) GetTradesByStatus(
	ctx context.Context, status domain.TradeStatus,
) ([]domain.Trade, error) {
	query := badgerhold.Where("Status").Eq(status)
	return r.findTrades(ctx, query)
}

func (r tradeRepositoryImpl) UpdateTrade(
	ctx context.Context,
	tradeID uint64,
	updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	trade, err := r.getTrade(ctx, tradeID)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(trade)
	if err != nil {
		return err
	}

	return r.updateTrade(ctx, tradeID, *updatedTrade)
}

func (r tradeRepositoryImpl) findTrades(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Trade, error) {
	var trades []domain.Trade
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &trades, query)
	} else {
		err = r.store.Find(&trades, query)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ID < trades[j].ID
	})
	return trades, nil
}

func (r tradeRepositoryImpl) getTrade(
	ctx context.Context, tradeID uint64,
) (*domain.Trade, error) {
	var trade domain.Trade
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, tradeID, &trade)
	} else {
		err = r.store.Get(tradeID, &trade)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}

	return &trade, nil
}

func (r tradeRepositoryImpl) insertTrade(
	ctx context.Context, trade domain.Trade,
) error {
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, trade.ID, trade)
	} else {
		err = r.store.Insert(trade.ID, trade)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return ErrTradeAlreadyExists
		}
		return err
	}
	return nil
}

func (r tradeRepositoryImpl) updateTrade(
	ctx context.Context, tradeID uint64, trade domain.Trade,
) error {
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxUpdate(tx, tradeID, trade)
	}
	return r.store.Update(tradeID, trade)
}
