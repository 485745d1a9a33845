// Package escrow implements the escrow engine. Every mutating operation runs
// in a single store transaction: it confirms the engine is initialized,
// validates the domain guards, demands a proof from the single account
// entitled to the operation, moves value if required, and finally persists
// the state change together with the related event. Any failure discards
// every write.
package escrow

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/tdex-network/escrowd/internal/core/ports"
)

const (
	MethodInitialize         = "initialize"
	MethodRegisterArbitrator = "register_arbitrator"
	MethodRemoveArbitrator   = "remove_arbitrator"
	MethodUpdateFee          = "update_fee"
	MethodWithdrawFees       = "withdraw_fees"
	MethodCreateTrade        = "create_trade"
	MethodFundTrade          = "fund_trade"
	MethodCompleteTrade      = "complete_trade"
	MethodConfirmReceipt     = "confirm_receipt"
	MethodRaiseDispute       = "raise_dispute"
	MethodResolveDispute     = "resolve_dispute"
	MethodCancelTrade        = "cancel_trade"
)

type Service struct {
	repoManager ports.RepoManager
	transfer    ports.ValueTransfer
	authorizer  ports.Authorizer
	// custody is the account holding the escrowed value on the asset ledger.
	custody string
}

func NewService(
	repoManager ports.RepoManager,
	transfer ports.ValueTransfer,
	authorizer ports.Authorizer,
	custodyAccount string,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if transfer == nil {
		return nil, fmt.Errorf("missing value transfer service")
	}
	if authorizer == nil {
		return nil, fmt.Errorf("missing authorizer")
	}
	if len(custodyAccount) <= 0 {
		return nil, fmt.Errorf("missing escrow custody account")
	}

	return &Service{repoManager, transfer, authorizer, custodyAccount}, nil
}

// CustodyAccount returns the account holding the escrowed value.
func (s *Service) CustodyAccount() string {
	return s.custody
}

// NewInvocation returns the invocation a proof must be bound to for calling
// the given method with the given arguments. Arguments are formatted with
// their default format.
func NewInvocation(method string, args ...interface{}) ports.Invocation {
	strArgs := make([]string, 0, len(args))
	for _, arg := range args {
		strArgs = append(strArgs, fmt.Sprint(arg))
	}
	return ports.Invocation{Method: method, Args: strArgs}
}

func (s *Service) runTransaction(
	ctx context.Context, method string,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	res, err := s.repoManager.RunTransaction(ctx, false, handler)
	if err != nil {
		log.WithError(err).Debugf("%s failed", method)
		return nil, err
	}
	return res, nil
}

func (s *Service) getConfig(ctx context.Context) (*domain.Config, error) {
	return s.repoManager.ConfigRepository().GetConfig(ctx)
}

func (s *Service) getTrade(
	ctx context.Context, tradeID uint64,
) (*domain.Trade, error) {
	return s.repoManager.TradeRepository().GetTrade(ctx, tradeID)
}

func (s *Service) saveTrade(ctx context.Context, trade *domain.Trade) error {
	return s.repoManager.TradeRepository().UpdateTrade(
		ctx, trade.ID, func(_ *domain.Trade) (*domain.Trade, error) {
			return trade, nil
		},
	)
}

func (s *Service) saveConfig(ctx context.Context, cfg *domain.Config) error {
	return s.repoManager.ConfigRepository().UpdateConfig(
		ctx, func(_ *domain.Config) (*domain.Config, error) {
			return cfg, nil
		},
	)
}

// transferReference returns the reference of the value movement made by
// the given method, for the n-th trade or fee withdrawal. Being derived from
// persisted state, it's the same when the operation is retried after a
// failure.
func transferReference(method string, n uint64) string {
	return fmt.Sprintf("%s:%d", method, n)
}

func (s *Service) publish(ctx context.Context, event domain.Event) error {
	if _, err := s.repoManager.EventRepository().AddEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to append %s event: %w", event.Topic, err)
	}
	return nil
}

// moveValue transfers the amount with the value transfer service, if not
// zero.
func (s *Service) moveValue(
	ctx context.Context, reference, asset, from, to string, amount uint64,
) error {
	if amount == 0 {
		return nil
	}
	if err := s.transfer.Transfer(
		ctx, reference, asset, from, to, amount,
	); err != nil {
		return fmt.Errorf("value transfer failed: %w", err)
	}
	return nil
}
