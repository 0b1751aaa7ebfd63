package farmhand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hollowfarm/internal/catalog"
	"github.com/talgya/hollowfarm/internal/farm"
)

// observation builds what the observer would fetch for the given state.
func observation(mutate func(s *farm.State)) *Observation {
	cat := catalog.Default()
	f := farm.New(cat, farm.DefaultRules(), farm.RollerFunc(func() float64 { return 1 }))
	s := f.Snapshot()
	if mutate != nil {
		mutate(&s.State)
	}

	items := make([]CatalogItem, 0)
	for _, it := range cat.Items() {
		items = append(items, CatalogItem{Item: it, Locked: it.Locked(s.Level)})
	}
	return &Observation{
		State:   s,
		Catalog: CatalogData{Level: s.Level, Items: items, Recipes: cat.Recipes()},
		Market: MarketData{
			Gold:        s.Gold,
			Buy:         s.Market(cat),
			Sell:        s.Sellable(cat),
			Plantable:   s.Plantable(cat),
			Processable: s.Processable(cat),
		},
	}
}

func TestDecide_OpeningPlantsWheat(t *testing.T) {
	d := Decide(observation(nil))

	assert.Equal(t, ActionPlant, d.Action)
	require.Len(t, d.Intents, 2)
	assert.Equal(t, farm.Intent{Type: farm.IntentSelectTool, Item: "wheat_seed"}, d.Intents[0])
	assert.Equal(t, farm.Intent{Type: farm.IntentClickPlot, Plot: 0}, d.Intents[1])
}

func TestDecide_WolfOverridesEverything(t *testing.T) {
	d := Decide(observation(func(s *farm.State) {
		s.Wolf = farm.Wolf{Active: true, Health: 3}
		s.Plots[0] = farm.Plot{ID: 0, Kind: farm.PlotCrop, ItemID: "wheat_seed", Progress: 100}
	}))

	assert.Equal(t, ActionAttack, d.Action)
	assert.Equal(t, []farm.Intent{{Type: farm.IntentAttack}}, d.Intents)
}

func TestDecide_HarvestBeforeCollect(t *testing.T) {
	d := Decide(observation(func(s *farm.State) {
		s.Plots[2] = farm.Plot{ID: 2, Kind: farm.PlotAnimal, ItemID: "chicken", Progress: 100, Ready: true}
		s.Plots[5] = farm.Plot{ID: 5, Kind: farm.PlotCrop, ItemID: "wheat_seed", Progress: 100}
	}))
	assert.Equal(t, ActionHarvest, d.Action)
	assert.Equal(t, []farm.Intent{{Type: farm.IntentClickPlot, Plot: 5}}, d.Intents)

	d = Decide(observation(func(s *farm.State) {
		s.Plots[2] = farm.Plot{ID: 2, Kind: farm.PlotAnimal, ItemID: "chicken", Progress: 100, Ready: true}
	}))
	assert.Equal(t, ActionCollect, d.Action)
	assert.Equal(t, []farm.Intent{{Type: farm.IntentClickPlot, Plot: 2}}, d.Intents)
}

func TestDecide_PlantsDearestStock(t *testing.T) {
	d := Decide(observation(func(s *farm.State) {
		s.Inventory = farm.Inventory{{ItemID: "wheat_seed", Count: 1}, {ItemID: "chicken", Count: 1}}
	}))
	require.Equal(t, ActionPlant, d.Action)
	assert.Equal(t, "chicken", d.Intents[0].Item)
}

func TestDecide_ProcessBeforeSell(t *testing.T) {
	d := Decide(observation(func(s *farm.State) {
		s.Inventory = farm.Inventory{{ItemID: "wheat", Count: 2}, {ItemID: "egg", Count: 1}}
	}))

	assert.Equal(t, ActionProcess, d.Action)
	assert.Equal(t, []farm.Intent{{Type: farm.IntentProcess, Input: "wheat", Output: "bread"}}, d.Intents)
}

func TestDecide_SellsProduceNotStock(t *testing.T) {
	d := Decide(observation(func(s *farm.State) {
		for i := range s.Plots[:11] {
			s.Plots[i] = farm.Plot{ID: i, Kind: farm.PlotCrop, ItemID: "wheat_seed", Progress: 40}
		}
		s.Inventory = farm.Inventory{{ItemID: "chicken", Count: 1}, {ItemID: "egg", Count: 1}, {ItemID: "bread", Count: 1}}
	}))

	assert.Equal(t, ActionSell, d.Action)
	assert.Equal(t, []farm.Intent{{Type: farm.IntentSell, Item: "bread"}}, d.Intents)
}

func TestDecide_BuysUnlockedAffordableSeed(t *testing.T) {
	d := Decide(observation(func(s *farm.State) {
		s.Inventory = nil
		s.Gold = 120
	}))

	// Pumpkin is locked at level 1 and a chicken needs twice its price.
	assert.Equal(t, ActionBuy, d.Action)
	assert.Equal(t, []farm.Intent{{Type: farm.IntentBuy, Item: "wheat_seed"}}, d.Intents)

	d = Decide(observation(func(s *farm.State) {
		s.Inventory = nil
		s.Gold = 200
		s.Level = 2
	}))
	assert.Equal(t, "chicken", d.Intents[0].Item)
}

func TestDecide_NothingToDo(t *testing.T) {
	d := Decide(observation(func(s *farm.State) {
		s.Inventory = nil
		s.Gold = 5
	}))

	assert.Equal(t, ActionNone, d.Action)
	assert.Empty(t, d.Intents)
}

func TestTriage_Conditions(t *testing.T) {
	h := Triage(observation(nil))
	assert.Equal(t, 11, h.EmptyPlots)
	assert.Equal(t, 3, h.Seeds)
	assert.Equal(t, "IDLE", h.Condition)

	h = Triage(observation(func(s *farm.State) {
		s.Plots[0] = farm.Plot{ID: 0, Kind: farm.PlotCrop, ItemID: "wheat_seed", Progress: 20}
		s.Plots[1] = farm.Plot{ID: 1, Kind: farm.PlotCrop, ItemID: "wheat_seed", Progress: 100}
	}))
	assert.Equal(t, 1, h.GrowingPlots)
	assert.Equal(t, 1, h.ReadyPlots)
	assert.Equal(t, "THRIVING", h.Condition)

	h = Triage(observation(func(s *farm.State) { s.Wolf = farm.Wolf{Active: true, Health: 5} }))
	assert.Equal(t, "BESIEGED", h.Condition)

	h = Triage(observation(func(s *farm.State) {
		s.Inventory = nil
		s.Gold = 0
	}))
	assert.Equal(t, "STALLED", h.Condition)
}
