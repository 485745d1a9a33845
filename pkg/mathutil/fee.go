package mathutil

import (
	"github.com/shopspring/decimal"
)

const (
	// TenThousands is the denominator of a rate expressed in basis points
	// (ie. 25 = 0.25%).
	TenThousands = uint64(10000)
)

// FeeAmount calculates floor(amount * feeAsBasisPoint / 10000). The
// multiplication is checked, ErrOverflow is returned instead of a wrapped
// value.
func FeeAmount(amount, feeAsBasisPoint uint64) (uint64, error) {
	scaled, err := SafeMul(amount, feeAsBasisPoint)
	if err != nil {
		return 0, err
	}
	return scaled / TenThousands, nil
}

// LessFee returns the amount with the given fee subtracted.
func LessFee(amount, fee uint64) (uint64, error) {
	return SafeSub(amount, fee)
}

// BasisPointsToPercentage converts a rate in basis points to a percentage
// (ie. 250 -> 2.5).
func BasisPointsToPercentage(feeAsBasisPoint uint64) decimal.Decimal {
	return decimal.New(int64(feeAsBasisPoint), -2)
}
