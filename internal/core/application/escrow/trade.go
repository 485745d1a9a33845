package escrow

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/escrowd/internal/core/domain"
)

// CreateTrade creates a new trade on behalf of the seller and returns its
// id. The fee is computed with the rate in force at creation. If given, the
// arbitrator must be registered.
func (s *Service) CreateTrade(
	ctx context.Context,
	seller, buyer string, amount uint64, arbitrator string,
) (uint64, error) {
	res, err := s.runTransaction(
		ctx, MethodCreateTrade,
		func(ctx context.Context) (interface{}, error) {
			cfg, err := s.getConfig(ctx)
			if err != nil {
				return nil, err
			}
			if amount == 0 {
				return nil, domain.ErrInvalidAmount
			}
			if len(seller) <= 0 || len(buyer) <= 0 || seller == buyer {
				return nil, domain.ErrInvalidParties
			}

			if err := s.authorizer.RequireAuth(
				ctx, seller,
				NewInvocation(MethodCreateTrade, seller, buyer, amount, arbitrator),
			); err != nil {
				return nil, err
			}

			if len(arbitrator) > 0 {
				registered, err := s.repoManager.ArbitratorRepository().IsRegistered(
					ctx, arbitrator,
				)
				if err != nil {
					return nil, err
				}
				if !registered {
					return nil, domain.ErrArbitratorNotRegistered
				}
			}

			tradeID, err := cfg.NextTradeID()
			if err != nil {
				return nil, err
			}
			fee, err := cfg.TradeFee(amount)
			if err != nil {
				return nil, err
			}
			trade, err := domain.NewTrade(
				tradeID, seller, buyer, amount, fee, arbitrator,
			)
			if err != nil {
				return nil, err
			}

			if err := s.repoManager.TradeRepository().AddTrade(ctx, trade); err != nil {
				return nil, err
			}
			if err := s.saveConfig(ctx, cfg); err != nil {
				return nil, err
			}
			if err := s.publish(ctx, domain.NewTradeCreatedEvent(*trade)); err != nil {
				return nil, err
			}
			return tradeID, nil
		},
	)
	if err != nil {
		return 0, err
	}

	tradeID := res.(uint64)
	log.Debugf("created trade %d", tradeID)
	return tradeID, nil
}

// FundTrade moves the trade amount from the buyer into custody.
func (s *Service) FundTrade(ctx context.Context, tradeID uint64) error {
	_, err := s.runTransaction(
		ctx, MethodFundTrade,
		func(ctx context.Context) (interface{}, error) {
			cfg, err := s.getConfig(ctx)
			if err != nil {
				return nil, err
			}
			trade, err := s.getTrade(ctx, tradeID)
			if err != nil {
				return nil, err
			}
			if err := trade.Fund(); err != nil {
				return nil, err
			}

			if err := s.authorizer.RequireAuth(
				ctx, trade.Buyer, NewInvocation(MethodFundTrade, tradeID),
			); err != nil {
				return nil, err
			}

			if err := s.moveValue(
				ctx, transferReference(MethodFundTrade, tradeID),
				cfg.ValueAsset, trade.Buyer, s.custody, trade.Amount,
			); err != nil {
				return nil, err
			}

			if err := s.saveTrade(ctx, trade); err != nil {
				return nil, err
			}
			return nil, s.publish(ctx, domain.NewTradeFundedEvent(tradeID))
		},
	)
	if err != nil {
		return err
	}

	log.Debugf("funded trade %d", tradeID)
	return nil
}

// CompleteTrade marks a funded trade as completed by the seller.
func (s *Service) CompleteTrade(ctx context.Context, tradeID uint64) error {
	_, err := s.runTransaction(
		ctx, MethodCompleteTrade,
		func(ctx context.Context) (interface{}, error) {
			if _, err := s.getConfig(ctx); err != nil {
				return nil, err
			}
			trade, err := s.getTrade(ctx, tradeID)
			if err != nil {
				return nil, err
			}
			if err := trade.Complete(); err != nil {
				return nil, err
			}

			if err := s.authorizer.RequireAuth(
				ctx, trade.Seller, NewInvocation(MethodCompleteTrade, tradeID),
			); err != nil {
				return nil, err
			}

			if err := s.saveTrade(ctx, trade); err != nil {
				return nil, err
			}
			return nil, s.publish(ctx, domain.NewTradeCompletedEvent(tradeID))
		},
	)
	if err != nil {
		return err
	}

	log.Debugf("completed trade %d", tradeID)
	return nil
}

// ConfirmReceipt releases the payout of a completed trade to the seller and
// accrues the trade fee.
func (s *Service) ConfirmReceipt(ctx context.Context, tradeID uint64) error {
	_, err := s.runTransaction(
		ctx, MethodConfirmReceipt,
		func(ctx context.Context) (interface{}, error) {
			cfg, err := s.getConfig(ctx)
			if err != nil {
				return nil, err
			}
			trade, err := s.getTrade(ctx, tradeID)
			if err != nil {
				return nil, err
			}
			payout, err := trade.Confirm()
			if err != nil {
				return nil, err
			}

			if err := s.authorizer.RequireAuth(
				ctx, trade.Buyer, NewInvocation(MethodConfirmReceipt, tradeID),
			); err != nil {
				return nil, err
			}

			if err := cfg.AccrueFee(trade.Fee); err != nil {
				return nil, err
			}

			if err := s.moveValue(
				ctx, transferReference(MethodConfirmReceipt, tradeID),
				cfg.ValueAsset, s.custody, trade.Seller, payout,
			); err != nil {
				return nil, err
			}

			if err := s.saveTrade(ctx, trade); err != nil {
				return nil, err
			}
			if err := s.saveConfig(ctx, cfg); err != nil {
				return nil, err
			}
			return nil, s.publish(
				ctx, domain.NewTradeConfirmedEvent(tradeID, payout, trade.Fee),
			)
		},
	)
	if err != nil {
		return err
	}

	log.Debugf("confirmed receipt of trade %d", tradeID)
	return nil
}

// RaiseDispute moves a funded or completed trade to disputed on behalf of
// the caller, that must be one of the trade parties. The trade must have an
// arbitrator bound.
func (s *Service) RaiseDispute(ctx context.Context, tradeID uint64) error {
	_, err := s.runTransaction(
		ctx, MethodRaiseDispute,
		func(ctx context.Context) (interface{}, error) {
			if _, err := s.getConfig(ctx); err != nil {
				return nil, err
			}
			trade, err := s.getTrade(ctx, tradeID)
			if err != nil {
				return nil, err
			}
			if err := trade.Dispute(); err != nil {
				return nil, err
			}

			caller, err := s.authorizer.Caller(ctx)
			if err != nil {
				return nil, err
			}
			if !trade.IsParty(caller) {
				return nil, domain.ErrUnauthorized
			}
			if err := s.authorizer.RequireAuth(
				ctx, caller, NewInvocation(MethodRaiseDispute, tradeID),
			); err != nil {
				return nil, err
			}

			if err := s.saveTrade(ctx, trade); err != nil {
				return nil, err
			}
			return nil, s.publish(ctx, domain.NewDisputeRaisedEvent(tradeID, caller))
		},
	)
	if err != nil {
		return err
	}

	log.Debugf("raised dispute on trade %d", tradeID)
	return nil
}

// ResolveDispute releases the payout of a disputed trade to the party chosen
// by the arbitrator bound to the trade, and accrues the trade fee.
func (s *Service) ResolveDispute(
	ctx context.Context, tradeID uint64, resolution domain.DisputeResolution,
) error {
	_, err := s.runTransaction(
		ctx, MethodResolveDispute,
		func(ctx context.Context) (interface{}, error) {
			cfg, err := s.getConfig(ctx)
			if err != nil {
				return nil, err
			}
			trade, err := s.getTrade(ctx, tradeID)
			if err != nil {
				return nil, err
			}
			recipient, payout, err := trade.Resolve(resolution)
			if err != nil {
				return nil, err
			}

			if err := s.authorizer.RequireAuth(
				ctx, trade.Arbitrator,
				NewInvocation(MethodResolveDispute, tradeID, resolution),
			); err != nil {
				return nil, err
			}

			if err := cfg.AccrueFee(trade.Fee); err != nil {
				return nil, err
			}

			if err := s.moveValue(
				ctx, transferReference(MethodResolveDispute, tradeID),
				cfg.ValueAsset, s.custody, recipient, payout,
			); err != nil {
				return nil, err
			}

			if err := s.saveTrade(ctx, trade); err != nil {
				return nil, err
			}
			if err := s.saveConfig(ctx, cfg); err != nil {
				return nil, err
			}
			return nil, s.publish(
				ctx, domain.NewDisputeResolvedEvent(tradeID, resolution, recipient),
			)
		},
	)
	if err != nil {
		return err
	}

	log.Debugf("resolved dispute on trade %d with %s", tradeID, resolution)
	return nil
}

// CancelTrade cancels a trade not yet funded on behalf of the seller.
func (s *Service) CancelTrade(ctx context.Context, tradeID uint64) error {
	_, err := s.runTransaction(
		ctx, MethodCancelTrade,
		func(ctx context.Context) (interface{}, error) {
			if _, err := s.getConfig(ctx); err != nil {
				return nil, err
			}
			trade, err := s.getTrade(ctx, tradeID)
			if err != nil {
				return nil, err
			}
			if err := trade.Cancel(); err != nil {
				return nil, err
			}

			if err := s.authorizer.RequireAuth(
				ctx, trade.Seller, NewInvocation(MethodCancelTrade, tradeID),
			); err != nil {
				return nil, err
			}

			if err := s.saveTrade(ctx, trade); err != nil {
				return nil, err
			}
			return nil, s.publish(ctx, domain.NewTradeCancelledEvent(tradeID))
		},
	)
	if err != nil {
		return err
	}

	log.Debugf("cancelled trade %d", tradeID)
	return nil
}
