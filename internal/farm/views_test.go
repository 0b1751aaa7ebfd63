package farm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hollowfarm/internal/catalog"
)

func TestViews(t *testing.T) {
	cat := catalog.Default()
	f := newFarm(t, func(s *State) {
		s.Gold = 100
		s.Level = 2
		s.Inventory = Inventory{
			{ItemID: "wheat_seed", Count: 2},
			{ItemID: "wheat", Count: 3},
			{ItemID: "chicken", Count: 1},
			{ItemID: "milk", Count: 1},
		}
	})
	snap := f.Snapshot()

	market := snap.Market(cat)
	require.Len(t, market, 5)
	byID := map[string]MarketEntry{}
	for _, m := range market {
		byID[m.ID] = m
	}
	assert.False(t, byID["wheat_seed"].Locked)
	assert.True(t, byID["wheat_seed"].Affordable)
	assert.False(t, byID["chicken"].Locked)
	assert.True(t, byID["chicken"].Affordable)
	assert.True(t, byID["cow"].Locked)
	assert.False(t, byID["cow"].Affordable)

	assert.Equal(t, Inventory{{ItemID: "wheat_seed", Count: 2}, {ItemID: "chicken", Count: 1}}, snap.Plantable(cat))
	assert.Equal(t, Inventory{{ItemID: "wheat", Count: 3}, {ItemID: "chicken", Count: 1}, {ItemID: "milk", Count: 1}}, snap.Sellable(cat))
	assert.Equal(t, []ProcessOption{
		{Input: "wheat", Output: "bread", Count: 3},
		{Input: "milk", Output: "cheese", Count: 1},
	}, snap.Processable(cat))
}
