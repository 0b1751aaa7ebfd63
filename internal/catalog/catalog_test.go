package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ReferencesResolve(t *testing.T) {
	c := Default()

	for _, it := range c.Items() {
		if !it.Plantable() {
			continue
		}
		out, ok := c.Item(it.OutputID)
		require.True(t, ok, "output of %s", it.ID)
		assert.Equal(t, CategoryProduct, out.Category)
	}

	out, ok := c.Recipe("wheat")
	require.True(t, ok)
	assert.Equal(t, "bread", out)

	_, ok = c.Recipe("egg")
	assert.False(t, ok)
}

func TestBuyable_OnlyPricedItems(t *testing.T) {
	var ids []string
	for _, it := range Default().Buyable() {
		assert.Greater(t, it.BuyPrice, 0)
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"wheat_seed", "pumpkin_seed", "nightshade_seed", "chicken", "cow"}, ids)
}

func TestLocked(t *testing.T) {
	pumpkin, ok := Default().Item("pumpkin_seed")
	require.True(t, ok)

	assert.True(t, pumpkin.Locked(2))
	assert.False(t, pumpkin.Locked(3))
}

func TestNew_RejectsBrokenTables(t *testing.T) {
	tests := []struct {
		name    string
		items   []Item
		recipes map[string]string
	}{
		{"empty id", []Item{{Category: CategoryProduct}}, nil},
		{"duplicate", []Item{
			{ID: "a", Category: CategoryProduct},
			{ID: "a", Category: CategoryProduct},
		}, nil},
		{"bad category", []Item{{ID: "a", Category: "TOOL"}}, nil},
		{"missing output", []Item{{ID: "s", Category: CategoryCrop, GrowthTime: 3, OutputID: "x"}}, nil},
		{"zero growth", []Item{
			{ID: "s", Category: CategoryCrop, OutputID: "p"},
			{ID: "p", Category: CategoryProduct},
		}, nil},
		{"dangling recipe", []Item{{ID: "p", Category: CategoryProduct}}, map[string]string{"p": "q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.items, tt.recipes)
			assert.Error(t, err)
		})
	}
}

func TestLookup_SuggestsClosestID(t *testing.T) {
	c := Default()

	_, err := c.Lookup("wheet_seed")
	var unknown *UnknownItemError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "wheat_seed", unknown.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "wheat_seed"`)

	_, err = c.Lookup("zzzzzzzzzzzz")
	require.True(t, errors.As(err, &unknown))
	assert.Empty(t, unknown.Suggestion)
}

func TestParse_YAMLOverride(t *testing.T) {
	raw := []byte(`
items:
  - id: turnip_seed
    name: Grave Turnip
    category: CROP
    buy_price: 5
    growth_time: 2
    xp_reward: 3
    output_id: turnip
  - id: turnip
    category: PRODUCT
    sell_price: 8
  - id: wheat
    category: PRODUCT
    sell_price: 15
  - id: bread
    category: PROCESSED
    sell_price: 50
    xp_reward: 20
  - id: milk
    category: PRODUCT
  - id: cheese
    category: PROCESSED
`)
	c, err := Parse(raw)
	require.NoError(t, err)

	seed, ok := c.Item("turnip_seed")
	require.True(t, ok)
	assert.Equal(t, 2, seed.GrowthTime)
	assert.Equal(t, "Grave Turnip", seed.Name)

	turnip, _ := c.Item("turnip")
	assert.Equal(t, "turnip", turnip.Name, "name defaults to id")

	out, ok := c.Recipe("wheat")
	require.True(t, ok, "built-in recipes kept when none are given")
	assert.Equal(t, "bread", out)
}

func TestParse_RejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("items: []\n"))
	assert.Error(t, err)
}
