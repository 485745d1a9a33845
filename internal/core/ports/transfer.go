package ports

import (
	"context"
	"errors"
)

// ErrInsufficientBalance is returned by a ValueTransfer if the source account
// can't cover the transferred amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ValueTransfer is the external asset ledger that actually moves value
// between accounts. A transfer either succeeds or fails atomically.
// The reference identifies the movement: resubmitting a transfer with the
// same reference must not move value twice.
type ValueTransfer interface {
	Transfer(
		ctx context.Context, reference, asset, from, to string, amount uint64,
	) error
}

// BalanceRepository persists the balances of the local asset ledger.
type BalanceRepository interface {
	// GetBalance returns the balance of the account for the given asset, 0 if
	// never credited.
	GetBalance(ctx context.Context, asset, account string) (uint64, error)
	// UpdateBalance allows to change the balance of an account in a
	// transactional way.
	UpdateBalance(
		ctx context.Context,
		asset, account string,
		updateFn func(balance uint64) (uint64, error),
	) error
}
