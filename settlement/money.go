package settlement

import "github.com/shopspring/decimal"

// Op identifies an arithmetic operation accepted by Calc.
type Op string

const (
	OpAdd      Op = "add"
	OpSubtract Op = "subtract"
	OpMultiply Op = "multiply"
	OpDivide   Op = "divide"
)

// CurrencyPrecision is the decimal precision used for all currency amounts.
const CurrencyPrecision int32 = 2

// Calc performs a single arithmetic operation and rounds the result half-up
// to precision decimal digits. It is the only arithmetic entry point for
// derived currency values; nothing else in the module adds or subtracts
// amounts directly.
func Calc(a, b decimal.Decimal, op Op, precision int32) (decimal.Decimal, error) {
	if precision < 0 {
		return decimal.Zero, ErrInvalidPrecision
	}
	switch op {
	case OpAdd:
		return a.Add(b).Round(precision), nil
	case OpSubtract:
		return a.Sub(b).Round(precision), nil
	case OpMultiply:
		return a.Mul(b).Round(precision), nil
	case OpDivide:
		if b.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return a.DivRound(b, precision), nil
	}
	return decimal.Zero, ErrUnknownOp
}
