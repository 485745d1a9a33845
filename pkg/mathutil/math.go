package mathutil

import (
	"errors"
	"math/bits"
)

var (
	// ErrOverflow is returned when the result of an operation does not fit in
	// a uint64.
	ErrOverflow = errors.New("arithmetic overflow")
)

// SafeAdd takes two uint64 numbers and returns x + y, or ErrOverflow if the
// sum wraps around.
func SafeAdd(x, y uint64) (uint64, error) {
	sum, carry := bits.Add64(x, y, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// SafeSub takes two uint64 numbers and returns x - y, or ErrOverflow if y is
// greater than x.
func SafeSub(x, y uint64) (uint64, error) {
	diff, borrow := bits.Sub64(x, y, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return diff, nil
}

// SafeMul takes two uint64 numbers and returns x * y, or ErrOverflow if the
// product needs more than 64 bits.
func SafeMul(x, y uint64) (uint64, error) {
	hi, lo := bits.Mul64(x, y)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}
