package farmhand

import "github.com/talgya/hollowfarm/internal/farm"

// FarmHealth holds derived signals computed from an Observation.
// Runs before Decide; deterministic and free.
type FarmHealth struct {
	EmptyPlots   int
	GrowingPlots int
	ReadyPlots   int
	Seeds        int    // Plantable units held
	Condition    string // "BESIEGED", "STALLED", "IDLE", "THRIVING"
}

// Triage computes a FarmHealth from the observation.
func Triage(obs *Observation) *FarmHealth {
	h := &FarmHealth{}

	for _, p := range obs.State.Plots {
		switch {
		case p.Kind == farm.PlotEmpty:
			h.EmptyPlots++
		case p.Harvestable():
			h.ReadyPlots++
		case p.Kind == farm.PlotCrop || p.Kind == farm.PlotAnimal:
			h.GrowingPlots++
		}
	}
	for _, e := range obs.Market.Plantable {
		h.Seeds += e.Count
	}

	cheapest := 0
	for _, m := range obs.Market.Buy {
		if cheapest == 0 || m.BuyPrice < cheapest {
			cheapest = m.BuyPrice
		}
	}

	switch {
	case obs.State.Wolf.Active:
		h.Condition = "BESIEGED"
	case h.GrowingPlots == 0 && h.ReadyPlots == 0 && h.Seeds == 0 &&
		len(obs.Market.Sell) == 0 && len(obs.State.Jobs) == 0 && obs.State.Gold < cheapest:
		// Nothing growing, nothing to sell, cannot afford a seed.
		h.Condition = "STALLED"
	case h.GrowingPlots == 0 && h.ReadyPlots == 0:
		h.Condition = "IDLE"
	default:
		h.Condition = "THRIVING"
	}

	return h
}
