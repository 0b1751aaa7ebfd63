package catalog

// defaultItems is the built-in item table.
var defaultItems = []Item{
	// Crops.
	{ID: "wheat_seed", Name: "Ghost Wheat", Category: CategoryCrop, UnlockLevel: 1,
		BuyPrice: 10, GrowthTime: 5, XPReward: 10, OutputID: "wheat",
		Description: "Pale wheat that sways without wind."},
	{ID: "pumpkin_seed", Name: "Cursed Pumpkin", Category: CategoryCrop, UnlockLevel: 3,
		BuyPrice: 30, GrowthTime: 10, XPReward: 25, OutputID: "pumpkin",
		Description: "Glowing with an inner, eerie light."},
	{ID: "nightshade_seed", Name: "Nightshade", Category: CategoryCrop, UnlockLevel: 6,
		BuyPrice: 80, GrowthTime: 20, XPReward: 60, OutputID: "nightshade_flower",
		Description: "Deadly beautiful purple flowers."},

	// Harvested produce.
	{ID: "wheat", Name: "Wheat Bundle", Category: CategoryProduct, UnlockLevel: 1,
		SellPrice: 15, Description: "Ready for the mill."},
	{ID: "pumpkin", Name: "Pumpkin", Category: CategoryProduct, UnlockLevel: 3,
		SellPrice: 50, Description: "Heavy and ominous."},
	{ID: "nightshade_flower", Name: "Nightshade Flower", Category: CategoryProduct, UnlockLevel: 6,
		SellPrice: 140, Description: "Handle with care."},

	// Animals. Growth time is the production interval; animals can be sold back.
	{ID: "chicken", Name: "Bone Chicken", Category: CategoryAnimal, UnlockLevel: 2,
		BuyPrice: 100, SellPrice: 50, GrowthTime: 8, XPReward: 15, OutputID: "egg",
		Description: "Clucks in a minor key."},
	{ID: "cow", Name: "Shadow Cow", Category: CategoryAnimal, UnlockLevel: 5,
		BuyPrice: 500, SellPrice: 250, GrowthTime: 15, XPReward: 40, OutputID: "milk",
		Description: "Produces milk black as night."},

	// Animal products.
	{ID: "egg", Name: "Obsidian Egg", Category: CategoryProduct, UnlockLevel: 2,
		SellPrice: 30, Description: "Hard as stone, rich in flavor."},
	{ID: "milk", Name: "Void Milk", Category: CategoryProduct, UnlockLevel: 5,
		SellPrice: 80, Description: "Cold to the touch."},

	// Processed goods.
	{ID: "bread", Name: "Soul Bread", Category: CategoryProcessed, UnlockLevel: 4,
		SellPrice: 50, GrowthTime: 5, XPReward: 20,
		Description: "Nourishment for the weary soul."},
	{ID: "cheese", Name: "Moon Cheese", Category: CategoryProcessed, UnlockLevel: 7,
		SellPrice: 150, GrowthTime: 10, XPReward: 50,
		Description: "Aged in the crypts."},
}

var defaultRecipes = map[string]string{
	"wheat": "bread",
	"milk":  "cheese",
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultItems, defaultRecipes)
	if err != nil {
		// The built-in table is static; failing here is a programming error.
		panic("catalog: invalid built-in table: " + err.Error())
	}
	return c
}
