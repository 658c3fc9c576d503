package safe

import (
	"math"
	"testing"
)

func TestSafeMath(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b int64) int64
		a, b int64
		want int64
	}{
		{"Add", Add, 10, 20, 30},
		{"Add Boundary", Add, math.MaxInt64 - 1, 1, math.MaxInt64},
		{"Sub", Sub, 30, 10, 20},
		{"Mul", Mul, 5, 6, 30},
		{"Mul Zero", Mul, 0, math.MaxInt64, 0},
		{"Mul MinInt64 by one", Mul, math.MinInt64, 1, math.MinInt64},
		{"Div", Div, 100, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op(tt.a, tt.b); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSafeMathPanics(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b int64) int64
		a, b int64
	}{
		{"Add Overflow", Add, math.MaxInt64, 1},
		{"Add Underflow", Add, math.MinInt64, -1},
		{"Sub Underflow", Sub, math.MinInt64, 1},
		{"Mul Overflow", Mul, math.MaxInt64, 2},
		{"Mul MinInt64 Negate", Mul, math.MinInt64, -1},
		{"Div By Zero", Div, 1, 0},
		{"Div Overflow", Div, math.MinInt64, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s(%d, %d) did not panic", tt.name, tt.a, tt.b)
				}
			}()
			_ = tt.op(tt.a, tt.b)
		})
	}
}
