package quant

import (
	"fmt"
	"math"
)

// PriceCents represents a price multiplied by 100.
// E.g., $100.00 = 10,000 PriceCents.
type PriceCents int64

// Qty represents a number of shares. Whole shares only, so partial fills
// subtract exact amounts and quantity conservation holds without rounding.
type Qty int64

const (
	PriceScale = 100

	// TickCents is the limit-price grid spacing used by traders: one dime.
	TickCents PriceCents = 10
)

// ToPriceCents converts a float64 to PriceCents.
// Note: Only used at the trader/config boundary. The engine works in
// PriceCents directly.
func ToPriceCents(f float64) PriceCents {
	return PriceCents(math.Round(f * PriceScale))
}

// ToQty converts a float64 share count to a whole-share quantity.
func ToQty(f float64) Qty {
	return Qty(math.Round(f))
}

// Dollars converts a price back to float64 for trader-side math.
func (p PriceCents) Dollars() float64 {
	return float64(p) / PriceScale
}

func (p PriceCents) String() string {
	return fmt.Sprintf("%.2f", float64(p)/PriceScale)
}

func (q Qty) String() string {
	return fmt.Sprintf("%d", int64(q))
}
