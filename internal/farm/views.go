package farm

import "github.com/talgya/hollowfarm/internal/catalog"

// MarketEntry is a buyable item as the market shows it.
type MarketEntry struct {
	catalog.Item
	Locked     bool `json:"locked"`     // Above the player's level (advisory)
	Affordable bool `json:"affordable"` // Gold covers the buy price
}

// Market lists the buyable items in catalog order.
func (s Snapshot) Market(cat *catalog.Catalog) []MarketEntry {
	var out []MarketEntry
	for _, it := range cat.Buyable() {
		out = append(out, MarketEntry{
			Item:       it,
			Locked:     it.Locked(s.Level),
			Affordable: s.Gold >= it.BuyPrice,
		})
	}
	return out
}

// Sellable lists held items the market will pay for.
func (s Snapshot) Sellable(cat *catalog.Catalog) Inventory {
	var out Inventory
	for _, e := range s.Inventory {
		if it, ok := cat.Item(e.ItemID); ok && it.SellPrice > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Plantable lists held items that can be selected as a planting tool.
func (s Snapshot) Plantable(cat *catalog.Catalog) Inventory {
	var out Inventory
	for _, e := range s.Inventory {
		if it, ok := cat.Item(e.ItemID); ok && it.Plantable() {
			out = append(out, e)
		}
	}
	return out
}

// ProcessOption is a recipe the player holds input for.
type ProcessOption struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Count  int    `json:"count"` // Units of input held
}

// Processable lists held items with a recipe.
func (s Snapshot) Processable(cat *catalog.Catalog) []ProcessOption {
	var out []ProcessOption
	for _, e := range s.Inventory {
		if o, ok := cat.Recipe(e.ItemID); ok {
			out = append(out, ProcessOption{Input: e.ItemID, Output: o, Count: e.Count})
		}
	}
	return out
}
