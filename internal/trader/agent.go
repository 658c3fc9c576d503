// Package trader implements the market participants: agents that perceive
// a value for the instrument, compare it with the last traded price, and
// place (or withdraw) orders accordingly. All randomness flows through a
// single *rand.Rand owned by the driver, so a run is reproducible from
// its seed.
package trader

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"market_go/internal/domain"
	"market_go/pkg/quant"
)

// Params are the behavioral parameters shared by all agent kinds.
type Params struct {
	Phi   float64 // aggression: appetite to act on a perceived mispricing
	Rho   float64 // patience: appetite to rest a limit order away from the touch
	Mu    float64 // base order size, shares
	Psi   float64 // size response to the mispricing
	Sigma float64 // order size noise, stddev in shares
	Delta float64 // valuation perception noise, stddev in dollars

	Beta    float64 // price smoothing weight (chartists only)
	Horizon int     // close-history lookback (trend followers only)
}

// maxSpots bounds how far from the touch a limit order can rest, in
// price ticks.
const maxSpots = 20

// Agent is a market participant. The valuation model is the only part
// that differs between agent kinds; everything else — participation,
// limit-vs-market choice, sizing, cancel-and-replace — is shared.
type Agent struct {
	id    string
	p     Params
	rng   *rand.Rand
	model valuation

	val      float64 // current perceived value, dollars
	prevDiff float64 // relative mispricing seen on the previous query
}

// valuation produces the agent's perceived value of the instrument.
type valuation interface {
	value(m Market, prev float64, rng *rand.Rand, p Params) float64
}

func newAgent(id string, p Params, rng *rand.Rand, startVal float64, model valuation) *Agent {
	return &Agent{
		id:       id,
		p:        p,
		rng:      rng,
		model:    model,
		val:      startVal,
		prevDiff: math.SmallestNonzeroFloat64,
	}
}

// NewFundamentalist creates an agent that perceives the fundamental price
// with N(0, Delta) error.
func NewFundamentalist(id string, p Params, rng *rand.Rand, startVal float64) *Agent {
	return newAgent(id, p, rng, startVal, fundamentalValuation{})
}

// NewChartist creates an agent that exponentially smooths the last trade
// price into its prior belief.
func NewChartist(id string, p Params, rng *rand.Rand, startVal float64) *Agent {
	return newAgent(id, p, rng, startVal, chartistValuation{})
}

// NewTrender creates an agent that extrapolates a fitted linear trend of
// recent daily closes.
func NewTrender(id string, p Params, rng *rand.Rand, startVal float64) *Agent {
	return newAgent(id, p, rng, startVal, trendValuation{})
}

func (a *Agent) ID() string { return a.id }

// Quote revalues the instrument and decides this tick's action. The flow
// mirrors a query cycle: withdraw the standing order if the perceived
// mispricing changed sign, then participate with probability
// 1-exp(-|diff|*phi), choosing between a market order and a limit order
// resting some ticks away from the touch.
func (a *Agent) Quote(m Market) Decision {
	a.val = a.model.value(m, a.val, a.rng, a.p)
	last := m.LastTradePrice().Dollars()
	diff := (last - a.val) / last

	var d Decision
	st, tracked := m.ParticipantStatus(a.id)
	if tracked && st.HasStanding && signFlipped(diff, a.prevDiff) {
		d.Cancel = st.Standing
		st.HasStanding = false
	}

	pParticipate := 1 - math.Exp(-math.Abs(diff)*a.p.Phi)
	a.prevDiff = diff
	if a.rng.Float64() >= pParticipate {
		return d
	}

	price, isMarket := a.orderPrice(m, diff)
	qty := a.orderQty(diff)
	if qty <= 0 || (!isMarket && price <= 0) {
		// Degenerate draw; sit this tick out.
		return d
	}

	if tracked && st.HasStanding {
		// Replace the previous resting order with the new one.
		d.Cancel = st.Standing
	}

	o := &domain.Order{
		ID:     uuid.NewString(),
		Owner:  a.id,
		Qty:    qty,
		Placed: m.Now(),
	}
	if diff > 0 {
		o.Side = domain.Sell // the market looks overpriced
	} else {
		o.Side = domain.Buy
	}
	if isMarket {
		o.Type = domain.TypeMarket
	} else {
		o.Type = domain.TypeLimit
		o.PriceCents = price
	}
	d.Submit = o
	return d
}

// orderPrice picks where the order goes: zero ticks away means a market
// order; otherwise a limit order rests k ticks beyond the best price on
// the agent's own side of the trade. A seller quotes above the best bid,
// a buyer below the best ask. With an empty reference side the last trade
// price anchors the quote instead.
func (a *Agent) orderPrice(m Market, diff float64) (quant.PriceCents, bool) {
	k := a.spotsAway(diff)
	if k == 0 {
		return 0, true
	}
	offset := quant.PriceCents(k) * quant.TickCents
	if diff > 0 {
		ref, ok := m.BestBid()
		if !ok {
			ref = m.LastTradePrice()
		}
		return ref + offset, false
	}
	ref, ok := m.BestAsk()
	if !ok {
		ref = m.LastTradePrice()
	}
	return ref - offset, false
}

// spotsAway draws the distance from the touch, in ticks, from a truncated
// geometric distribution. The decay rate is |diff|/rho: impatient agents
// facing a large mispricing cluster at the touch (k=0, a market order),
// patient agents spread deeper into the book.
func (a *Agent) spotsAway(diff float64) int {
	q := math.Exp(-math.Abs(diff / a.p.Rho))
	u := a.rng.Float64() * (1 - math.Pow(q, maxSpots+1))
	cum := 0.0
	for k := 0; k < maxSpots; k++ {
		cum += math.Pow(q, float64(k)) * (1 - q)
		if u < cum {
			return k
		}
	}
	return maxSpots
}

// orderQty draws the order size: N(mu, sigma) plus a component that grows
// with the perceived mispricing. Non-positive draws become a no-op.
func (a *Agent) orderQty(diff float64) quant.Qty {
	size := a.rng.NormFloat64()*a.p.Sigma + a.p.Mu + a.p.Psi*a.p.Sigma*math.Abs(diff)
	if size < 0 {
		return 0
	}
	return quant.ToQty(size)
}

func signFlipped(a, b float64) bool {
	return math.Signbit(a) != math.Signbit(b)
}
