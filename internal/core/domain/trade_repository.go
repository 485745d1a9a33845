package domain

import "context"

// TradeRepository is the abstraction for any kind of database intended to
// persist Trades.
type TradeRepository interface {
	// AddTrade adds a brand new trade to the repository.
	AddTrade(ctx context.Context, trade *Trade) error
	// GetTrade returns the trade with the given id or ErrTradeNotFound.
	GetTrade(ctx context.Context, tradeID uint64) (*Trade, error)
	// GetAllTrades returns all the trades stored in the repository, sorted by
	// id.
	GetAllTrades(ctx context.Context) ([]Trade, error)
	// GetTradesByStatus returns the trades in the given status.
	GetTradesByStatus(ctx context.Context, status TradeStatus) ([]Trade, error)
	// UpdateTrade allows to commit multiple changes to the same trade in a
	// transactional way.
	UpdateTrade(
		ctx context.Context,
		tradeID uint64,
		updateFn func(t *Trade) (*Trade, error),
	) error
}
