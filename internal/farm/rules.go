package farm

import "math"

// Fixed game constants.
const (
	LogCap = 20 // Narrative lines kept in state

	maxProgress = 100.0

	xpPerLevelBase = 100
	levelFactor    = 1.5

	wolfBaseHealth     = 10
	wolfHealthPerLevel = 2
	wolfGoldPerLevel   = 50
	wolfXP             = 100

	oracleGrowthBoost = 20.0
	oracleGold        = 50

	welcomeMessage = "Welcome to the shadowed lands. Plant seeds to survive."
)

// Rules holds the tunable starting conditions and rates.
type Rules struct {
	Plots          int     `yaml:"plots"`           // Including the processing building
	StartGold      int     `yaml:"start_gold"`
	StartInventory []Entry `yaml:"start_inventory"`
	WolfChance     float64 `yaml:"wolf_chance"`   // Per-tick probability
	ProcessTicks   int     `yaml:"process_ticks"` // Delay between input and output
}

// DefaultRules returns the standard game setup.
func DefaultRules() Rules {
	return Rules{
		Plots:          12,
		StartGold:      50,
		StartInventory: []Entry{{ItemID: "wheat_seed", Count: 3}},
		WolfChance:     0.02,
		ProcessTicks:   1,
	}
}

// NewState builds the opening state. The last plot is the building.
func NewState(r Rules) State {
	n := r.Plots
	if n < 2 {
		n = 2
	}
	plots := make([]Plot, n)
	for i := range plots {
		plots[i] = Plot{ID: i, Kind: PlotEmpty}
	}
	plots[n-1].Kind = PlotBuilding

	var inv Inventory
	for _, e := range r.StartInventory {
		inv.Add(e.ItemID, e.Count)
	}

	return State{
		Gold:      r.StartGold,
		Level:     1,
		Plots:     plots,
		Inventory: inv,
		Log:       []string{welcomeMessage},
	}
}

// xpRequired is the cumulative xp needed to leave the given level.
func xpRequired(level int) int {
	return int(math.Round(float64(level) * xpPerLevelBase * levelFactor))
}

// clampProgress caps progress at 100, snapping float drift just below it.
func clampProgress(p float64) float64 {
	if p >= maxProgress-1e-9 {
		return maxProgress
	}
	if p < 0 {
		return 0
	}
	return p
}
