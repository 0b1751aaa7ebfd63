package farm

import "github.com/talgya/hollowfarm/internal/catalog"

// tick advances the farm by one tick: processing jobs, the wolf roll and
// plot growth. An active wolf freezes the fields but not the building.
func (t *txn) tick(roll Roller) {
	t.s.Tick++

	t.advanceJobs()

	if t.s.Wolf.Active {
		return
	}

	if roll != nil && roll.Float() < t.rules.WolfChance {
		t.startWolf()
	}

	t.grow()
}

// grow advances every occupied plot that is still maturing.
func (t *txn) grow() {
	for i := range t.s.Plots {
		p := &t.s.Plots[i]
		if p.Kind != PlotCrop && p.Kind != PlotAnimal {
			continue
		}
		if p.Progress >= maxProgress || p.Ready {
			continue
		}
		it, ok := t.cat.Item(p.ItemID)
		if !ok || it.GrowthTime <= 0 {
			continue
		}

		p.Progress = clampProgress(p.Progress + maxProgress/float64(it.GrowthTime))
		if p.Kind == PlotAnimal && p.Progress >= maxProgress {
			p.Ready = true
		}
	}
}

// selectTool sets or clears the planting selection.
func (t *txn) selectTool(itemID string) Outcome {
	if itemID == "" {
		t.s.Tool = ""
		return Outcome{Applied: true}
	}
	it, ok := t.cat.Item(itemID)
	if !ok || !it.Plantable() {
		t.logf(CategoryFarm, "%s cannot be planted.", displayName(it, itemID))
		return rejected("not plantable")
	}
	t.s.Tool = itemID
	return Outcome{Applied: true}
}

// clickPlot harvests, collects, plants or opens the building depending on
// what occupies the plot. The wolf blocks every click.
func (t *txn) clickPlot(id int) Outcome {
	if t.s.Wolf.Active {
		return rejected("wolf attack in progress")
	}
	if id < 0 || id >= len(t.s.Plots) {
		return rejected("no such plot")
	}
	p := &t.s.Plots[id]

	switch {
	case p.Kind == PlotCrop && p.Progress >= maxProgress:
		return t.harvest(p)
	case p.Kind == PlotAnimal && p.Ready:
		return t.collect(p)
	case p.Kind == PlotEmpty && t.s.Tool != "":
		return t.plant(p)
	case p.Kind == PlotBuilding:
		return Outcome{Applied: true, Signal: SignalOpenProcessing}
	}
	return rejected("nothing to do")
}

func (t *txn) harvest(p *Plot) Outcome {
	seed, ok := t.cat.Item(p.ItemID)
	if !ok {
		return rejected("unknown crop")
	}
	produce, _ := t.cat.Item(seed.OutputID)

	t.s.Inventory.Add(produce.ID, 1)
	t.gainXP(seed.XPReward)
	t.logf(CategoryFarm, "Reaped %s.", produce.Name)

	*p = Plot{ID: p.ID, Kind: PlotEmpty}
	return Outcome{Applied: true}
}

func (t *txn) collect(p *Plot) Outcome {
	animal, ok := t.cat.Item(p.ItemID)
	if !ok {
		return rejected("unknown animal")
	}
	product, _ := t.cat.Item(animal.OutputID)

	t.s.Inventory.Add(product.ID, 1)
	t.gainXP(animal.XPReward)
	t.logf(CategoryFarm, "Collected %s from %s.", product.Name, animal.Name)

	p.Progress = 0
	p.Ready = false
	return Outcome{Applied: true}
}

func (t *txn) plant(p *Plot) Outcome {
	it, ok := t.cat.Item(t.s.Tool)
	if !ok || !it.Plantable() {
		t.s.Tool = ""
		return rejected("not plantable")
	}
	if !t.s.Inventory.Remove(it.ID, 1) {
		t.logf(CategoryFarm, "You possess no %s.", it.Name)
		t.s.Tool = ""
		return rejected("not in inventory")
	}

	kind := PlotAnimal
	if it.Category == catalog.CategoryCrop {
		kind = PlotCrop
	}
	*p = Plot{ID: p.ID, Kind: kind, ItemID: it.ID}
	t.logf(CategoryFarm, "Planted %s.", it.Name)
	return Outcome{Applied: true}
}
