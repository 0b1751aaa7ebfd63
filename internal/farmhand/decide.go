package farmhand

import (
	"fmt"

	"github.com/talgya/hollowfarm/internal/catalog"
	"github.com/talgya/hollowfarm/internal/farm"
)

// Action names what the farmhand chose to do.
type Action string

const (
	ActionNone    Action = "none"
	ActionHarvest Action = "harvest"
	ActionCollect Action = "collect"
	ActionAttack  Action = "attack"
	ActionPlant   Action = "plant"
	ActionProcess Action = "process"
	ActionSell    Action = "sell"
	ActionBuy     Action = "buy"
)

// Decision is the farmhand's next move: one or more intents sent in order.
type Decision struct {
	Action    Action        `json:"action"`
	Rationale string        `json:"rationale"`
	Intents   []farm.Intent `json:"intents"`
}

// animalReserve is the multiple of an animal's price the farmhand keeps in
// hand before buying one.
const animalReserve = 2

// Decide picks the next action. Rules in priority order: harvest a ripe
// crop, collect from a ready animal, fight the wolf, plant, process, sell,
// buy. The wolf blocks every plot action, so while it prowls the only
// choice is to attack.
func Decide(obs *Observation) Decision {
	s := obs.State

	if s.Wolf.Active {
		return Decision{
			Action:    ActionAttack,
			Rationale: fmt.Sprintf("wolf at %d health blocks the fields", s.Wolf.Health),
			Intents:   []farm.Intent{{Type: farm.IntentAttack}},
		}
	}

	for _, p := range s.Plots {
		if p.Kind == farm.PlotCrop && p.Harvestable() {
			return click(ActionHarvest, p, "crop is ripe")
		}
	}
	for _, p := range s.Plots {
		if p.Kind == farm.PlotAnimal && p.Harvestable() {
			return click(ActionCollect, p, "animal product is ready")
		}
	}

	if d, ok := decidePlant(obs); ok {
		return d
	}

	if len(obs.Market.Processable) > 0 {
		opt := obs.Market.Processable[0]
		return Decision{
			Action:    ActionProcess,
			Rationale: fmt.Sprintf("%s is worth more as %s", opt.Input, opt.Output),
			Intents:   []farm.Intent{{Type: farm.IntentProcess, Input: opt.Input, Output: opt.Output}},
		}
	}

	if d, ok := decideSell(obs); ok {
		return d
	}

	if d, ok := decideBuy(obs); ok {
		return d
	}

	return Decision{Action: ActionNone, Rationale: "nothing useful to do"}
}

func click(a Action, p farm.Plot, why string) Decision {
	return Decision{
		Action:    a,
		Rationale: fmt.Sprintf("plot %d: %s", p.ID, why),
		Intents:   []farm.Intent{{Type: farm.IntentClickPlot, Plot: p.ID}},
	}
}

// decidePlant plants the most valuable held seed or animal on the first
// empty plot.
func decidePlant(obs *Observation) (Decision, bool) {
	plot, ok := firstEmpty(obs.State)
	if !ok || len(obs.Market.Plantable) == 0 {
		return Decision{}, false
	}

	best, bestPrice := "", -1
	for _, e := range obs.Market.Plantable {
		it, ok := obs.Item(e.ItemID)
		if !ok {
			continue
		}
		if it.BuyPrice > bestPrice {
			best, bestPrice = it.ID, it.BuyPrice
		}
	}
	if best == "" {
		return Decision{}, false
	}

	return Decision{
		Action:    ActionPlant,
		Rationale: fmt.Sprintf("plot %d is empty and %s is in stock", plot.ID, best),
		Intents: []farm.Intent{
			{Type: farm.IntentSelectTool, Item: best},
			{Type: farm.IntentClickPlot, Plot: plot.ID},
		},
	}, true
}

// decideSell sells one unit of the highest-priced produce or processed
// good. Seeds and animals are kept.
func decideSell(obs *Observation) (Decision, bool) {
	best, bestPrice := "", 0
	for _, e := range obs.Market.Sell {
		it, ok := obs.Item(e.ItemID)
		if !ok || it.Plantable() {
			continue
		}
		if it.SellPrice > bestPrice {
			best, bestPrice = it.ID, it.SellPrice
		}
	}
	if best == "" {
		return Decision{}, false
	}
	return Decision{
		Action:    ActionSell,
		Rationale: fmt.Sprintf("%s fetches %d gold", best, bestPrice),
		Intents:   []farm.Intent{{Type: farm.IntentSell, Item: best}},
	}, true
}

// decideBuy buys stock for an empty plot: the dearest unlocked crop seed
// the purse covers, or an animal when gold is well above its price.
func decideBuy(obs *Observation) (Decision, bool) {
	if _, ok := firstEmpty(obs.State); !ok {
		return Decision{}, false
	}
	gold := obs.State.Gold

	var pick *farm.MarketEntry
	for i := range obs.Market.Buy {
		m := &obs.Market.Buy[i]
		if m.Locked || m.BuyPrice > gold {
			continue
		}
		if m.Category == catalog.CategoryAnimal && gold < animalReserve*m.BuyPrice {
			continue
		}
		if pick == nil || m.BuyPrice > pick.BuyPrice {
			pick = m
		}
	}
	if pick == nil {
		return Decision{}, false
	}
	return Decision{
		Action:    ActionBuy,
		Rationale: fmt.Sprintf("%d gold buys %s for an empty plot", gold, pick.ID),
		Intents:   []farm.Intent{{Type: farm.IntentBuy, Item: pick.ID}},
	}, true
}

func firstEmpty(s farm.Snapshot) (farm.Plot, bool) {
	for _, p := range s.Plots {
		if p.Kind == farm.PlotEmpty {
			return p, true
		}
	}
	return farm.Plot{}, false
}
