package trader

import (
	"math/rand"
)

// fundamentalValuation perceives the fundamental ("true") price with a
// mean-zero normal error.
type fundamentalValuation struct{}

func (fundamentalValuation) value(m Market, _ float64, rng *rand.Rand, p Params) float64 {
	return m.Fundamental() + rng.NormFloat64()*p.Delta
}

// chartistValuation smooths the last trade price into the prior belief:
// val = beta*price + (1-beta)*prev + noise.
type chartistValuation struct{}

func (chartistValuation) value(m Market, prev float64, rng *rand.Rand, p Params) float64 {
	last := m.LastTradePrice().Dollars()
	return p.Beta*last + (1-p.Beta)*prev + rng.NormFloat64()*p.Delta
}

// trendValuation fits a straight line through the last Horizon daily
// closes and reads it off at twice the horizon — a trend follower's
// forecast of where the price is heading.
type trendValuation struct{}

func (trendValuation) value(m Market, prev float64, _ *rand.Rand, p Params) float64 {
	hist := m.CloseHistory()
	n := p.Horizon
	if n < 2 || len(hist) < n {
		return prev
	}
	window := hist[len(hist)-n:]

	var sumX, sumY, sumXY, sumXX float64
	for i, c := range window {
		x := float64(i)
		y := c.Dollars()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return prev
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	return intercept + slope*float64(2*n)
}
