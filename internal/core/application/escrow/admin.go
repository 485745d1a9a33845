package escrow

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/escrowd/internal/core/domain"
)

// Initialize sets the admin, the escrowed asset and the platform fee rate.
// It can be called only once, with a proof from the admin.
func (s *Service) Initialize(
	ctx context.Context, admin, valueAsset string, feeBps uint32,
) error {
	_, err := s.runTransaction(
		ctx, MethodInitialize,
		func(ctx context.Context) (interface{}, error) {
			configRepo := s.repoManager.ConfigRepository()

			initialized, err := configRepo.IsInitialized(ctx)
			if err != nil {
				return nil, err
			}
			if initialized {
				return nil, domain.ErrAlreadyInitialized
			}

			cfg, err := domain.NewConfig(admin, valueAsset, feeBps)
			if err != nil {
				return nil, err
			}

			if err := s.authorizer.RequireAuth(
				ctx, admin,
				NewInvocation(MethodInitialize, admin, valueAsset, feeBps),
			); err != nil {
				return nil, err
			}

			if err := configRepo.InitConfig(ctx, *cfg); err != nil {
				return nil, err
			}
			return nil, s.publish(ctx, domain.NewInitializedEvent(*cfg))
		},
	)
	if err != nil {
		return err
	}

	log.Infof("escrow initialized with admin %s and fee %d bps", admin, feeBps)
	return nil
}

// RegisterArbitrator adds the address to the registry of arbitrators.
// Registering an already registered arbitrator is not an error.
func (s *Service) RegisterArbitrator(ctx context.Context, address string) error {
	_, err := s.runTransaction(
		ctx, MethodRegisterArbitrator,
		func(ctx context.Context) (interface{}, error) {
			cfg, err := s.getConfig(ctx)
			if err != nil {
				return nil, err
			}
			if len(address) <= 0 {
				return nil, domain.ErrInvalidAddress
			}

			if err := s.authorizer.RequireAuth(
				ctx, cfg.Admin, NewInvocation(MethodRegisterArbitrator, address),
			); err != nil {
				return nil, err
			}

			if err := s.repoManager.ArbitratorRepository().AddArbitrator(
				ctx, address,
			); err != nil {
				return nil, err
			}
			return nil, s.publish(ctx, domain.NewArbitratorRegisteredEvent(address))
		},
	)
	if err != nil {
		return err
	}

	log.Debugf("registered arbitrator %s", address)
	return nil
}

// RemoveArbitrator removes the address from the registry of arbitrators.
// Trades that already bound the arbitrator are not affected.
func (s *Service) RemoveArbitrator(ctx context.Context, address string) error {
	_, err := s.runTransaction(
		ctx, MethodRemoveArbitrator,
		func(ctx context.Context) (interface{}, error) {
			cfg, err := s.getConfig(ctx)
			if err != nil {
				return nil, err
			}
			if len(address) <= 0 {
				return nil, domain.ErrInvalidAddress
			}

			if err := s.authorizer.RequireAuth(
				ctx, cfg.Admin, NewInvocation(MethodRemoveArbitrator, address),
			); err != nil {
				return nil, err
			}

			if err := s.repoManager.ArbitratorRepository().RemoveArbitrator(
				ctx, address,
			); err != nil {
				return nil, err
			}
			return nil, s.publish(ctx, domain.NewArbitratorRemovedEvent(address))
		},
	)
	if err != nil {
		return err
	}

	log.Debugf("removed arbitrator %s", address)
	return nil
}

// UpdateFee changes the fee rate applied to trades created from now on.
func (s *Service) UpdateFee(ctx context.Context, feeBps uint32) error {
	_, err := s.runTransaction(
		ctx, MethodUpdateFee,
		func(ctx context.Context) (interface{}, error) {
			cfg, err := s.getConfig(ctx)
			if err != nil {
				return nil, err
			}
			if err := cfg.SetFeeBps(feeBps); err != nil {
				return nil, err
			}

			if err := s.authorizer.RequireAuth(
				ctx, cfg.Admin, NewInvocation(MethodUpdateFee, feeBps),
			); err != nil {
				return nil, err
			}

			if err := s.saveConfig(ctx, cfg); err != nil {
				return nil, err
			}
			return nil, s.publish(ctx, domain.NewFeeUpdatedEvent(feeBps))
		},
	)
	if err != nil {
		return err
	}

	log.Infof("platform fee updated to %d bps", feeBps)
	return nil
}

// WithdrawFees transfers the whole balance of accumulated fees from custody
// to the given account and resets it. If the transfer fails, the balance is
// left untouched.
func (s *Service) WithdrawFees(ctx context.Context, to string) error {
	res, err := s.runTransaction(
		ctx, MethodWithdrawFees,
		func(ctx context.Context) (interface{}, error) {
			cfg, err := s.getConfig(ctx)
			if err != nil {
				return nil, err
			}
			if len(to) <= 0 {
				return nil, domain.ErrInvalidAddress
			}

			if err := s.authorizer.RequireAuth(
				ctx, cfg.Admin, NewInvocation(MethodWithdrawFees, to),
			); err != nil {
				return nil, err
			}

			amount, err := cfg.DrainFees()
			if err != nil {
				return nil, err
			}

			if err := s.moveValue(
				ctx, transferReference(MethodWithdrawFees, cfg.FeeWithdrawals),
				cfg.ValueAsset, s.custody, to, amount,
			); err != nil {
				return nil, err
			}

			if err := s.saveConfig(ctx, cfg); err != nil {
				return nil, err
			}
			if err := s.publish(
				ctx, domain.NewFeesWithdrawnEvent(amount, to),
			); err != nil {
				return nil, err
			}
			return amount, nil
		},
	)
	if err != nil {
		return err
	}

	log.Infof("withdrawn %d of accumulated fees to %s", res.(uint64), to)
	return nil
}
