package domain

import "testing"

func TestSide_Opposite(t *testing.T) {
	tests := []struct {
		name string
		side Side
		want Side
	}{
		{"Buy", Buy, Sell},
		{"Sell", Sell, Buy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.side.Opposite(); got != tt.want {
				t.Errorf("Side.Opposite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrder_IsMarket(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want bool
	}{
		{"MARKET", TypeMarket, true},
		{"LIMIT", TypeLimit, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Type: tt.typ}
			if got := o.IsMarket(); got != tt.want {
				t.Errorf("Order.IsMarket() = %v, want %v", got, tt.want)
			}
		})
	}
}
