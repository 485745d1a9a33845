// Package localtransfer implements a value transfer service on top of a
// balance ledger kept in the same store of the escrow engine. Transfers
// requested within a store transaction join it, so that value movements and
// escrow state changes are committed or discarded together.
package localtransfer

import (
	"context"
	"fmt"

	"github.com/tdex-network/escrowd/internal/core/ports"
	"github.com/tdex-network/escrowd/pkg/mathutil"
)

type Service struct {
	repoManager ports.RepoManager
}

func NewService(repoManager ports.RepoManager) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	return &Service{repoManager}, nil
}

// Transfer moves amount of asset from one account to another. It fails
// with ports.ErrInsufficientBalance without any write if the source account
// can't cover the amount. The reference is not needed since a transfer
// commits together with the operation that requested it.
func (s *Service) Transfer(
	ctx context.Context, _, asset, from, to string, amount uint64,
) error {
	if len(asset) <= 0 || len(from) <= 0 || len(to) <= 0 {
		return fmt.Errorf("missing asset or account")
	}

	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			balances := s.repoManager.BalanceRepository()

			if err := balances.UpdateBalance(
				ctx, asset, from, func(balance uint64) (uint64, error) {
					if balance < amount {
						return 0, ports.ErrInsufficientBalance
					}
					return balance - amount, nil
				},
			); err != nil {
				return nil, err
			}

			return nil, balances.UpdateBalance(ctx, asset, to, credit(amount))
		},
	)
	return err
}

// Deposit credits the account with amount of asset out of thin air.
func (s *Service) Deposit(
	ctx context.Context, asset, account string, amount uint64,
) error {
	if len(asset) <= 0 || len(account) <= 0 {
		return fmt.Errorf("missing asset or account")
	}

	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return nil, s.repoManager.BalanceRepository().UpdateBalance(
				ctx, asset, account, credit(amount),
			)
		},
	)
	return err
}

// Balance returns the balance of the account for the given asset.
func (s *Service) Balance(
	ctx context.Context, asset, account string,
) (uint64, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.repoManager.BalanceRepository().GetBalance(ctx, asset, account)
		},
	)
	if err != nil {
		return 0, err
	}
	return res.(uint64), nil
}

func credit(amount uint64) func(uint64) (uint64, error) {
	return func(balance uint64) (uint64, error) {
		return mathutil.SafeAdd(balance, amount)
	}
}
