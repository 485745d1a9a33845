package domain

import (
	"github.com/tdex-network/escrowd/pkg/mathutil"
)

// Config is the process state record of the escrow engine. It's written
// once at initialization, after which Admin and ValueAsset can't change.
type Config struct {
	Admin           string
	ValueAsset      string
	FeeBps          uint32
	TradeCounter    uint64
	AccumulatedFees uint64
	// FeeWithdrawals counts the withdrawals of accumulated fees.
	FeeWithdrawals uint64
}

// NewConfig returns a validated config record for a brand new engine.
func NewConfig(admin, valueAsset string, feeBps uint32) (*Config, error) {
	if len(admin) <= 0 || len(valueAsset) <= 0 {
		return nil, ErrInvalidAddress
	}
	if err := ValidateFeeBps(feeBps); err != nil {
		return nil, err
	}
	return &Config{
		Admin:      admin,
		ValueAsset: valueAsset,
		FeeBps:     feeBps,
	}, nil
}

// NextTradeID increments the trade counter and returns the new value, that
// is the id to assign to the next created trade.
func (c *Config) NextTradeID() (uint64, error) {
	next, err := mathutil.SafeAdd(c.TradeCounter, 1)
	if err != nil {
		return 0, ErrOverflow
	}
	c.TradeCounter = next
	return next, nil
}

// AccrueFee adds the given fee to the balance of fees awaiting withdrawal.
func (c *Config) AccrueFee(fee uint64) error {
	total, err := mathutil.SafeAdd(c.AccumulatedFees, fee)
	if err != nil {
		return ErrOverflow
	}
	c.AccumulatedFees = total
	return nil
}

// SetFeeBps changes the platform fee rate applied to trades created from now
// on.
func (c *Config) SetFeeBps(feeBps uint32) error {
	if err := ValidateFeeBps(feeBps); err != nil {
		return err
	}
	c.FeeBps = feeBps
	return nil
}

// DrainFees zeroes the accumulated fees, counts the withdrawal and returns
// the drained balance.
func (c *Config) DrainFees() (uint64, error) {
	if c.AccumulatedFees == 0 {
		return 0, ErrNoFeesToWithdraw
	}
	withdrawals, err := mathutil.SafeAdd(c.FeeWithdrawals, 1)
	if err != nil {
		return 0, ErrOverflow
	}
	amount := c.AccumulatedFees
	c.AccumulatedFees = 0
	c.FeeWithdrawals = withdrawals
	return amount, nil
}

// TradeFee computes the fee of a trade of the given amount with the current
// fee rate.
func (c *Config) TradeFee(amount uint64) (uint64, error) {
	return ComputeFee(amount, c.FeeBps)
}
