package safe

import "math"

// Overflow-checked int64 arithmetic for ledger accounting. A silent wrap in
// volume or notional sums corrupts every downstream statistic, so overflow
// halts the run instead.

// Add performs int64 addition and panics on overflow/underflow.
func Add(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic("SAFE_ADD_OVERFLOW")
	}
	return a + b
}

// Sub performs int64 subtraction and panics on overflow/underflow.
func Sub(a, b int64) int64 {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		panic("SAFE_SUB_OVERFLOW")
	}
	return a - b
}

// Mul performs int64 multiplication and panics on overflow/underflow.
func Mul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		panic("SAFE_MUL_OVERFLOW")
	}
	res := a * b
	if res/b != a {
		panic("SAFE_MUL_OVERFLOW")
	}
	return res
}

// Div performs int64 division and panics on division by zero.
func Div(a, b int64) int64 {
	if b == 0 {
		panic("SAFE_DIV_BY_ZERO")
	}
	if a == math.MinInt64 && b == -1 {
		panic("SAFE_DIV_OVERFLOW")
	}
	return a / b
}
