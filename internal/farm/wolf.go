package farm

// startWolf begins an encounter sized to the player's level.
func (t *txn) startWolf() {
	t.s.Wolf = Wolf{
		Active: true,
		Health: wolfBaseHealth + wolfHealthPerLevel*t.s.Level,
	}
	t.logf(CategoryWolf, "A howl pierces the mist! A Shadow Wolf approaches!")
}

// attack strikes the wolf once. Victory pays gold and xp; the xp bypasses
// the level check, which runs again on the next ordinary gain.
func (t *txn) attack() Outcome {
	if !t.s.Wolf.Active {
		return rejected("no wolf")
	}

	t.s.Wolf.Health--
	if t.s.Wolf.Health > 0 {
		return Outcome{Applied: true}
	}

	gold := wolfGoldPerLevel * t.s.Level
	t.s.Wolf = Wolf{}
	t.s.Gold += gold
	t.s.XP += wolfXP
	t.logf(CategoryWolf, "The beast is vanquished! Gained %dg and %d XP.", gold, wolfXP)
	return Outcome{Applied: true}
}
