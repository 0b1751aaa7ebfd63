package farm

import "github.com/talgya/hollowfarm/internal/catalog"

// buy exchanges gold for one unit of the item. Unlock level and the
// market's priced-only listing are not checked here; both are advisory.
func (t *txn) buy(itemID string) Outcome {
	it, ok := t.cat.Item(itemID)
	if !ok {
		return rejected("unknown item")
	}
	if t.s.Gold < it.BuyPrice {
		return rejected("not enough gold")
	}

	t.s.Gold -= it.BuyPrice
	t.s.Inventory.Add(it.ID, 1)
	t.logf(CategoryMarket, "Acquired %s.", it.Name)
	return Outcome{Applied: true}
}

// sell exchanges one unit of the item for its sell price. The inventory is
// re-checked here so a stale intent cannot sell what is already gone.
func (t *txn) sell(itemID string) Outcome {
	it, ok := t.cat.Item(itemID)
	if !ok {
		return rejected("unknown item")
	}
	if it.SellPrice <= 0 {
		return rejected("worthless at market")
	}
	if !t.s.Inventory.Remove(it.ID, 1) {
		return rejected("not in inventory")
	}

	t.s.Gold += it.SellPrice
	t.logf(CategoryMarket, "Bartered %s for %d gold.", it.Name, it.SellPrice)
	return Outcome{Applied: true}
}

// process consumes one input now and queues the output as a job.
func (t *txn) process(inputID, outputID string) Outcome {
	if out, ok := t.cat.Recipe(inputID); !ok || out != outputID {
		return rejected("no such recipe")
	}
	if !t.s.Inventory.Remove(inputID, 1) {
		t.logf(CategoryProcessing, "Not enough materials.")
		return rejected("not enough materials")
	}

	delay := t.rules.ProcessTicks
	if delay < 1 {
		delay = 1
	}
	t.s.Jobs = append(t.s.Jobs, Job{
		ID:        newJobID(),
		InputID:   inputID,
		OutputID:  outputID,
		Remaining: delay,
	})
	t.logf(CategoryProcessing, "Processing started...")
	return Outcome{Applied: true}
}

// advanceJobs counts down pending jobs and credits the finished ones.
func (t *txn) advanceJobs() {
	if len(t.s.Jobs) == 0 {
		return
	}
	kept := t.s.Jobs[:0]
	for _, j := range t.s.Jobs {
		j.Remaining--
		if j.Remaining > 0 {
			kept = append(kept, j)
			continue
		}
		out, _ := t.cat.Item(j.OutputID)
		t.s.Inventory.Add(j.OutputID, 1)
		t.gainXP(out.XPReward)
		t.logf(CategoryProcessing, "Production complete: %s created.", displayName(out, j.OutputID))
	}
	t.s.Jobs = kept
}

// gainXP adds experience and levels up at most once.
func (t *txn) gainXP(amount int) {
	t.s.XP += amount
	if t.s.XP >= xpRequired(t.s.Level) {
		t.s.Level++
		t.logf(CategoryProgress, "You have ascended to Level %d. New dark secrets unlocked.", t.s.Level)
	}
}

func displayName(it catalog.Item, fallback string) string {
	if it.Name != "" {
		return it.Name
	}
	return fallback
}
