package ports

import (
	"context"

	"github.com/tdex-network/escrowd/internal/core/domain"
)

// RepoManager interface defines the methods to access the repositories of
// the ledger store and to run operations in a transactional way.
type RepoManager interface {
	ConfigRepository() domain.ConfigRepository
	TradeRepository() domain.TradeRepository
	ArbitratorRepository() domain.ArbitratorRepository
	EventRepository() domain.EventRepository
	NonceRepository() NonceRepository
	BalanceRepository() BalanceRepository

	Close()

	// RunTransaction runs the handler in a single transaction carried by the
	// context passed to it. The transaction is committed if the handler
	// succeeds and discarded otherwise. Read-write transactions are
	// serialized, read-only ones run concurrently.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)
}
