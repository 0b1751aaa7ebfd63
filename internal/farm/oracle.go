package farm

import (
	"context"
	"log/slog"

	"github.com/talgya/hollowfarm/internal/llm"
)

// Prophet is the external oracle. Implementations fail closed: they return
// a fallback prophecy instead of an error.
type Prophet interface {
	Prophesy(ctx context.Context, level int, weather string) llm.Prophecy
}

// Consulting reports whether a consultation is in flight.
func (f *Farm) Consulting() bool {
	return f.consulting.Load()
}

// Consult asks the oracle for a prophecy and applies its effect. Only one
// consultation runs at a time; a call made while another is outstanding is
// dropped and reports false. The oracle round trip runs without holding
// the state lock.
func (f *Farm) Consult(ctx context.Context, p Prophet, weather string) (llm.Prophecy, bool) {
	if !f.consulting.CompareAndSwap(false, true) {
		return llm.Prophecy{}, false
	}
	defer f.consulting.Store(false)

	snap, _ := f.apply(func(t *txn) Outcome {
		t.logf(CategoryOracle, "Consulting the spirits...")
		return Outcome{Applied: true}
	})

	prophecy := askSafely(ctx, p, snap.Level, weather)

	f.apply(func(t *txn) Outcome {
		t.applyProphecy(prophecy)
		return Outcome{Applied: true}
	})
	return prophecy, true
}

// askSafely shields the farm from a misbehaving oracle.
func askSafely(ctx context.Context, p Prophet, level int, weather string) (pr llm.Prophecy) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("oracle panicked", "panic", r)
			pr = llm.FoggyProphecy()
		}
	}()
	if p == nil {
		return llm.SilentProphecy()
	}
	return p.Prophesy(ctx, level, weather)
}

func (t *txn) applyProphecy(pr llm.Prophecy) {
	t.logf(CategoryOracle, "Oracle: \"%s\"", pr.Text)

	switch pr.Effect {
	case llm.EffectGrowthBoost:
		for i := range t.s.Plots {
			p := &t.s.Plots[i]
			if p.Kind != PlotCrop && p.Kind != PlotAnimal {
				continue
			}
			p.Progress = clampProgress(p.Progress + oracleGrowthBoost)
			// An animal pushed to full must still be collectable.
			if p.Kind == PlotAnimal && p.Progress >= maxProgress {
				p.Ready = true
			}
		}
		t.logf(CategoryOracle, "Effect: Vitality surge.")
	case llm.EffectPriceSurge:
		t.s.Gold += oracleGold
		t.logf(CategoryOracle, "Effect: A small fortune found.")
	}
}
