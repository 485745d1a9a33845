package escrow

import (
	"context"

	"github.com/tdex-network/escrowd/internal/core/domain"
)

// GetConfig returns the whole escrow config record.
func (s *Service) GetConfig(ctx context.Context) (*domain.Config, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.getConfig(ctx)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.(*domain.Config), nil
}

func (s *Service) GetTrade(
	ctx context.Context, tradeID uint64,
) (*domain.Trade, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.getTrade(ctx, tradeID)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.(*domain.Trade), nil
}

// ListTrades returns the trades in the given status, or all of them for
// TradeStatusUndefined.
func (s *Service) ListTrades(
	ctx context.Context, status domain.TradeStatus,
) ([]domain.Trade, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			repo := s.repoManager.TradeRepository()
			if status == domain.TradeStatusUndefined {
				return repo.GetAllTrades(ctx)
			}
			return repo.GetTradesByStatus(ctx, status)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.([]domain.Trade), nil
}

// ListOpenTrades returns the trades that still await a transition, that is
// those not cancelled or settled, sorted by id.
func (s *Service) ListOpenTrades(ctx context.Context) ([]domain.Trade, error) {
	trades, err := s.ListTrades(ctx, domain.TradeStatusUndefined)
	if err != nil {
		return nil, err
	}

	open := make([]domain.Trade, 0, len(trades))
	for _, trade := range trades {
		if !trade.Status.IsFinal() {
			open = append(open, trade)
		}
	}
	return open, nil
}

func (s *Service) GetAccumulatedFees(ctx context.Context) (uint64, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.AccumulatedFees, nil
}

func (s *Service) GetPlatformFeeBps(ctx context.Context) (uint32, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.FeeBps, nil
}

// IsArbitratorRegistered can be called by anyone, also before the escrow is
// initialized.
func (s *Service) IsArbitratorRegistered(
	ctx context.Context, address string,
) (bool, error) {
	return s.repoManager.ArbitratorRepository().IsRegistered(ctx, address)
}

func (s *Service) ListArbitrators(ctx context.Context) ([]string, error) {
	return s.repoManager.ArbitratorRepository().GetAllArbitrators(ctx)
}

// ListEvents returns at most limit events of the log following the given
// sequence number.
func (s *Service) ListEvents(
	ctx context.Context, afterSeq uint64, limit int,
) ([]domain.Event, error) {
	return s.repoManager.EventRepository().GetEventsAfter(ctx, afterSeq, limit)
}
