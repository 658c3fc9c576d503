package sim

import (
	"fmt"
	"math/rand"

	"market_go/internal/trader"
)

// Trader kinds accepted by CohortSpec.
const (
	KindFundamentalist = "fundamentalist"
	KindChartist       = "chartist"
	KindTrender        = "trender"
)

// Range is a closed interval for uniform parameter draws.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) draw(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// CohortSpec describes one homogeneous group of traders. Behavioral
// parameters are sampled per agent: uniforms over the configured ranges,
// except order size which is normal around MuMean.
type CohortSpec struct {
	Kind  string `yaml:"kind"`
	Count int    `yaml:"count"`

	Delta Range `yaml:"delta"` // valuation noise
	Phi   Range `yaml:"phi"`   // aggression
	Rho   Range `yaml:"rho"`   // patience
	Psi   Range `yaml:"psi"`   // size response

	MuMean float64 `yaml:"mu_mean"` // order size center, shares
	MuStd  float64 `yaml:"mu_std"`
	Sigma  Range   `yaml:"sigma"` // order size noise

	Beta    Range `yaml:"beta"`    // chartists
	Horizon Range `yaml:"horizon"` // trenders, whole days
}

// BuildPopulation samples every agent of every cohort, in declaration
// order, from the shared RNG. startVal is each agent's initial belief —
// the configured starting price.
func BuildPopulation(specs []CohortSpec, rng *rand.Rand, startVal float64) ([]trader.Trader, error) {
	var traders []trader.Trader
	counts := make(map[string]int) // next id number per kind
	for _, spec := range specs {
		for i := 0; i < spec.Count; i++ {
			p := trader.Params{
				Delta: spec.Delta.draw(rng),
				Phi:   spec.Phi.draw(rng),
				Rho:   spec.Rho.draw(rng),
				Psi:   spec.Psi.draw(rng),
				Mu:    rng.NormFloat64()*spec.MuStd + spec.MuMean,
				Sigma: spec.Sigma.draw(rng),
			}
			id := fmt.Sprintf("%s-%03d", spec.Kind, counts[spec.Kind])
			counts[spec.Kind]++

			switch spec.Kind {
			case KindFundamentalist:
				traders = append(traders, trader.NewFundamentalist(id, p, rng, startVal))
			case KindChartist:
				p.Beta = spec.Beta.draw(rng)
				traders = append(traders, trader.NewChartist(id, p, rng, startVal))
			case KindTrender:
				p.Horizon = int(spec.Horizon.draw(rng))
				traders = append(traders, trader.NewTrender(id, p, rng, startVal))
			default:
				return nil, fmt.Errorf("unknown trader kind %q", spec.Kind)
			}
		}
	}
	return traders, nil
}
