package domain

import (
	"github.com/tdex-network/escrowd/pkg/mathutil"
)

const (
	// MaxFeeBps is the max platform fee, 100%.
	MaxFeeBps = uint32(10000)
)

// ValidateFeeBps returns ErrInvalidFeeBps if the given rate exceeds MaxFeeBps.
func ValidateFeeBps(feeBps uint32) error {
	if feeBps > MaxFeeBps {
		return ErrInvalidFeeBps
	}
	return nil
}

// ComputeFee returns floor(amount * feeBps / 10000). For any valid rate the
// fee never exceeds the amount.
func ComputeFee(amount uint64, feeBps uint32) (uint64, error) {
	if err := ValidateFeeBps(feeBps); err != nil {
		return 0, err
	}
	fee, err := mathutil.FeeAmount(amount, uint64(feeBps))
	if err != nil {
		return 0, ErrOverflow
	}
	return fee, nil
}
