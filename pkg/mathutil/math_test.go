package mathutil_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/escrowd/pkg/mathutil"
)

func TestSafeArithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		sum, err := mathutil.SafeAdd(math.MaxUint64-1, 1)
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint64), sum)

		_, err = mathutil.SafeAdd(math.MaxUint64, 1)
		require.ErrorIs(t, err, mathutil.ErrOverflow)
	})

	t.Run("sub", func(t *testing.T) {
		diff, err := mathutil.SafeSub(10, 10)
		require.NoError(t, err)
		require.Zero(t, diff)

		_, err = mathutil.SafeSub(9, 10)
		require.ErrorIs(t, err, mathutil.ErrOverflow)
	})

	t.Run("mul", func(t *testing.T) {
		product, err := mathutil.SafeMul(math.MaxUint32, math.MaxUint32)
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint32)*uint64(math.MaxUint32), product)

		_, err = mathutil.SafeMul(math.MaxUint64/2, 3)
		require.ErrorIs(t, err, mathutil.ErrOverflow)
	})
}

func TestFeeAmount(t *testing.T) {
	tests := []struct {
		amount      uint64
		basisPoints uint64
		expected    uint64
	}{
		{10000, 250, 250},
		{10000, 0, 0},
		{10000, 10000, 10000},
		{1, 9999, 0},
		{399, 25, 0},
		{400, 25, 1},
		{123456789, 333, 4111111},
		{math.MaxUint64 / 10000, 10000, math.MaxUint64 / 10000},
	}

	for _, tt := range tests {
		fee, err := mathutil.FeeAmount(tt.amount, tt.basisPoints)
		require.NoError(t, err)
		require.Equal(t, tt.expected, fee)
		require.LessOrEqual(t, fee, tt.amount)
	}

	_, err := mathutil.FeeAmount(math.MaxUint64, 2)
	require.ErrorIs(t, err, mathutil.ErrOverflow)
}

func TestBasisPointsToPercentage(t *testing.T) {
	require.Equal(t, "2.5", mathutil.BasisPointsToPercentage(250).String())
	require.Equal(t, "100", mathutil.BasisPointsToPercentage(10000).String())
	require.Equal(t, "0.01", mathutil.BasisPointsToPercentage(1).String())
}
