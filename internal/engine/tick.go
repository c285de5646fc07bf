package engine

import (
	"math"
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
)

// Tick advances one simulation step: expire spells, apply duration effects,
// run troops, run defenses, refresh destruction, then check termination.
// It returns true when the battle should end this tick. Tick only acts
// during the battle phase except for the wall-clock trigger, which applies
// regardless so abandoned scout/deploy battles still time out.
func Tick(b *battle.Battle, tables *config.Balance, now time.Time) bool {
	if b.Phase == battle.PhaseEnded {
		return false
	}
	if !now.Before(b.EndsAt) {
		return true
	}
	if b.Phase != battle.PhaseBattle {
		return false
	}

	expireEffects(b, now)

	tc := newTickContext(b, tables, now)
	tc.applyDurationEffects()
	tc.troopsPass()
	tc.defensePass()

	refreshDestruction(b)

	if b.AllBuildingsDestroyed() {
		return true
	}
	if b.LivingTroops() == 0 && len(b.RemainingTroops) == 0 {
		return true
	}
	return false
}

// refreshDestruction recomputes the destruction percentage. Destroyed
// buildings count their full HP; damaged survivors count what they lost.
// The stored value never decreases (heals only apply to troops, but the
// clamp keeps the invariant explicit).
func refreshDestruction(b *battle.Battle) {
	var total, destroyed float64
	for _, bt := range b.Buildings {
		total += bt.MaxHP
		if bt.IsDestroyed {
			destroyed += bt.MaxHP
		} else {
			destroyed += bt.MaxHP - bt.CurrentHP
		}
	}
	if total <= 0 {
		return
	}
	pct := int(math.Floor(destroyed / total * 100))
	if pct > b.Destruction {
		b.Destruction = pct
	}
}
