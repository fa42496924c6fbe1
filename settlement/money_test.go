package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalc(t *testing.T) {
	cases := []struct {
		name      string
		a, b      string
		op        Op
		precision int32
		want      string
	}{
		{"add", "10.10", "0.15", OpAdd, 2, "10.25"},
		{"subtract", "55.00", "5.50", OpSubtract, 2, "49.50"},
		{"multiply", "3", "10.00", OpMultiply, 2, "30.00"},
		{"divide", "10", "3", OpDivide, 2, "3.33"},
		{"half up rounding", "2.345", "0", OpAdd, 2, "2.35"},
		{"half up on multiply", "1.005", "1", OpMultiply, 2, "1.01"},
		{"zero precision", "12.5", "0", OpAdd, 0, "13"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calc(dec(tc.a), dec(tc.b), tc.op, tc.precision)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.want)), "got %s, want %s", got, tc.want)
		})
	}
}

func TestCalcDivisionByZero(t *testing.T) {
	_, err := Calc(dec("10"), decimal.Zero, OpDivide, 2)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestCalcInvalidPrecision(t *testing.T) {
	_, err := Calc(dec("1"), dec("1"), OpAdd, -1)
	assert.ErrorIs(t, err, ErrInvalidPrecision)
}

func TestCalcUnknownOp(t *testing.T) {
	_, err := Calc(dec("1"), dec("1"), Op("modulo"), 2)
	assert.ErrorIs(t, err, ErrUnknownOp)
}

// Chained additions of 0.1 must not accumulate binary floating point drift.
func TestCalcNoFloatDrift(t *testing.T) {
	sum := decimal.Zero
	for i := 0; i < 100; i++ {
		var err error
		sum, err = Calc(sum, dec("0.1"), OpAdd, 2)
		require.NoError(t, err)
	}
	assert.True(t, sum.Equal(dec("10.00")), "got %s", sum)
}
