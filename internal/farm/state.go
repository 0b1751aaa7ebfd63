// Package farm holds the farm state machine: plots, inventory, economy,
// the wolf event and pending processing jobs.
//
// All mutation goes through a single Farm value. Each transition runs
// against a private clone of the state, which replaces the current state
// only once the transition has finished; readers only ever see Snapshots.
package farm

// PlotKind is the occupancy of a plot.
type PlotKind string

const (
	PlotEmpty    PlotKind = "EMPTY"
	PlotCrop     PlotKind = "CROP"
	PlotAnimal   PlotKind = "ANIMAL"
	PlotBuilding PlotKind = "BUILDING"
)

// Plot is a single farmable cell.
type Plot struct {
	ID       int      `json:"id"`
	Kind     PlotKind `json:"kind"`
	ItemID   string   `json:"item_id,omitempty"`
	Progress float64  `json:"progress"` // 0–100
	Ready    bool     `json:"ready"`    // Animals only: product awaiting collection
}

// Harvestable reports whether a click on the plot yields produce.
func (p Plot) Harvestable() bool {
	switch p.Kind {
	case PlotCrop:
		return p.Progress >= maxProgress
	case PlotAnimal:
		return p.Ready
	}
	return false
}

// Wolf is the hostile encounter. Health is only meaningful while Active.
type Wolf struct {
	Active bool `json:"active"`
	Health int  `json:"health"`
}

// Job is a pending processing conversion, advanced by the tick.
type Job struct {
	ID        string `json:"id"`
	InputID   string `json:"input_id"`
	OutputID  string `json:"output_id"`
	Remaining int    `json:"remaining_ticks"`
}

// State is the complete farm state.
type State struct {
	Tick      uint64    `json:"tick"`
	Gold      int       `json:"gold"`
	XP        int       `json:"xp"`
	Level     int       `json:"level"`
	Plots     []Plot    `json:"plots"`
	Inventory Inventory `json:"inventory"`
	Jobs      []Job     `json:"jobs"`
	Wolf      Wolf      `json:"wolf"`
	Tool      string    `json:"tool,omitempty"` // Selected seed/animal for planting
	Log       []string  `json:"log"`
}

// clone returns a deep copy; transitions never touch the original.
func (s State) clone() State {
	c := s
	c.Plots = append([]Plot(nil), s.Plots...)
	c.Inventory = append(Inventory(nil), s.Inventory...)
	c.Jobs = append([]Job(nil), s.Jobs...)
	c.Log = append([]string(nil), s.Log...)
	return c
}

// Snapshot is a read-only view of the state plus derived values.
type Snapshot struct {
	State
	XPToNext int `json:"xp_to_next"`
}

func (s State) snapshot() Snapshot {
	next := xpRequired(s.Level) - s.XP
	if next < 0 {
		next = 0
	}
	return Snapshot{State: s.clone(), XPToNext: next}
}

// Plot returns the plot with the given ID.
func (s Snapshot) Plot(id int) (Plot, bool) {
	if id < 0 || id >= len(s.Plots) {
		return Plot{}, false
	}
	return s.Plots[id], true
}

// Event is a narrative log line tagged for the journal.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`
}

// Event categories.
const (
	CategoryFarm       = "farm"
	CategoryMarket     = "market"
	CategoryProcessing = "processing"
	CategoryProgress   = "progress"
	CategoryWolf       = "wolf"
	CategoryOracle     = "oracle"
)
