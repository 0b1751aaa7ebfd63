// Package catalog defines every farm item and the processing recipes.
// The catalog is immutable once built and is shared by all farm components.
package catalog

import (
	"fmt"
	"sort"
)

// Category classifies an item's role in the economy.
type Category string

const (
	CategoryCrop      Category = "CROP"
	CategoryAnimal    Category = "ANIMAL"
	CategoryProduct   Category = "PRODUCT"
	CategoryProcessed Category = "PROCESSED"
)

// Item holds the economic and growth parameters of one item.
type Item struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Category    Category `yaml:"category" json:"category"`
	UnlockLevel int      `yaml:"unlock_level" json:"unlock_level"`
	BuyPrice    int      `yaml:"buy_price" json:"buy_price"`
	SellPrice   int      `yaml:"sell_price" json:"sell_price"`
	GrowthTime  int      `yaml:"growth_time" json:"growth_time"` // Ticks to mature/produce
	XPReward    int      `yaml:"xp_reward" json:"xp_reward"`
	OutputID    string   `yaml:"output_id,omitempty" json:"output_id,omitempty"` // Seed → produce, animal → product
}

// Plantable reports whether the item can occupy a plot.
func (it Item) Plantable() bool {
	return it.Category == CategoryCrop || it.Category == CategoryAnimal
}

// Locked reports whether the item is above the given player level.
// Locking is advisory: the market shows it, transitions do not enforce it.
func (it Item) Locked(level int) bool {
	return level < it.UnlockLevel
}

// Catalog is the immutable item and recipe table.
type Catalog struct {
	items   map[string]Item
	order   []string          // Declaration order, for stable listings
	recipes map[string]string // Input item ID → output item ID
}

// New validates items and recipes and builds a catalog.
func New(items []Item, recipes map[string]string) (*Catalog, error) {
	c := &Catalog{
		items:   make(map[string]Item, len(items)),
		order:   make([]string, 0, len(items)),
		recipes: make(map[string]string, len(recipes)),
	}

	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("item with empty id")
		}
		if _, dup := c.items[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item %q", it.ID)
		}
		switch it.Category {
		case CategoryCrop, CategoryAnimal, CategoryProduct, CategoryProcessed:
		default:
			return nil, fmt.Errorf("item %q: unknown category %q", it.ID, it.Category)
		}
		if it.BuyPrice < 0 || it.SellPrice < 0 || it.XPReward < 0 {
			return nil, fmt.Errorf("item %q: negative price or reward", it.ID)
		}
		if it.Name == "" {
			it.Name = it.ID
		}
		c.items[it.ID] = it
		c.order = append(c.order, it.ID)
	}

	// Second pass: references must resolve.
	for _, id := range c.order {
		it := c.items[id]
		if !it.Plantable() {
			continue
		}
		if it.GrowthTime <= 0 {
			return nil, fmt.Errorf("item %q: growth_time must be positive", id)
		}
		if _, ok := c.items[it.OutputID]; !ok {
			return nil, fmt.Errorf("item %q: unknown output %q", id, it.OutputID)
		}
	}

	for in, out := range recipes {
		if _, ok := c.items[in]; !ok {
			return nil, fmt.Errorf("recipe input %q not in catalog", in)
		}
		if _, ok := c.items[out]; !ok {
			return nil, fmt.Errorf("recipe output %q not in catalog", out)
		}
		c.recipes[in] = out
	}

	return c, nil
}

// Item returns the item with the given ID.
func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Lookup returns the item with the given ID, or an *UnknownItemError
// carrying the closest known ID.
func (c *Catalog) Lookup(id string) (Item, error) {
	if it, ok := c.items[id]; ok {
		return it, nil
	}
	return Item{}, &UnknownItemError{ID: id, Suggestion: c.Suggest(id)}
}

// Items returns every item in declaration order.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Buyable returns the items the market sells (buy price above zero).
func (c *Catalog) Buyable() []Item {
	var out []Item
	for _, id := range c.order {
		if it := c.items[id]; it.BuyPrice > 0 {
			out = append(out, it)
		}
	}
	return out
}

// Recipe returns the output produced from the given input.
func (c *Catalog) Recipe(inputID string) (string, bool) {
	out, ok := c.recipes[inputID]
	return out, ok
}

// RecipeEntry is one input → output conversion.
type RecipeEntry struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Recipes returns all recipes sorted by input ID.
func (c *Catalog) Recipes() []RecipeEntry {
	out := make([]RecipeEntry, 0, len(c.recipes))
	for in, o := range c.recipes {
		out = append(out, RecipeEntry{Input: in, Output: o})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Input < out[j].Input })
	return out
}

// UnknownItemError is returned when an item ID is not in the catalog.
type UnknownItemError struct {
	ID         string
	Suggestion string
}

func (e *UnknownItemError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown item %q (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown item %q", e.ID)
}
