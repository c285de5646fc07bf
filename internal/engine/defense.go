package engine

import (
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
)

// defensePass lets every standing, unfrozen defense building retaliate.
// A building only fires when the defender has completed the research its
// type requires; completed research also scales damage and range.
func (tc *tickContext) defensePass() {
	dmgMult, rngMult := tc.tables.DefensePerks(tc.b.DefenderResearch)

	for _, bt := range tc.b.Buildings {
		if bt.IsDestroyed || tc.frozen[bt.ID] {
			continue
		}
		def := tc.tables.Building(bt.Type)
		lvl := def.Level(bt.Level)
		if lvl == nil || lvl.Damage <= 0 || lvl.AttackSpeed <= 0 {
			continue
		}
		if def.RequiredResearch != "" && !tc.b.DefenderResearch[def.RequiredResearch] {
			continue
		}

		interval := time.Duration(float64(time.Second) / lvl.AttackSpeed)
		if !bt.LastAttackAt.IsZero() && tc.now.Sub(bt.LastAttackAt) < interval {
			continue
		}

		target := tc.nearestTroop(bt, def.Targets)
		if target == nil {
			continue
		}
		if bt.Position.Dist(target.Position) > lvl.AttackRange*rngMult {
			continue
		}
		bt.LastAttackAt = tc.now

		dmg := lvl.Damage * dmgMult
		if lvl.SplashRadius > 0 {
			splash := dmg * tc.tables.Combat.SplashFactor
			for _, t := range tc.b.Troops {
				if t == target || !t.Alive() {
					continue
				}
				if t.Position.Dist(target.Position) <= lvl.SplashRadius {
					damageTroop(t, splash)
				}
			}
		}
		damageTroop(target, dmg)
	}
}

// nearestTroop finds the closest living troop this building can hit, given
// the domain it shoots at. Ties go to the earlier troop in deploy order.
func (tc *tickContext) nearestTroop(bt *battle.BuildingTarget, targets battle.TargetDomain) *battle.Troop {
	if targets == "" {
		return nil
	}
	var best *battle.Troop
	bestDist := 0.0
	for _, t := range tc.b.Troops {
		if !t.Alive() || !targets.CanHit(t.Domain) {
			continue
		}
		d := bt.Position.Dist(t.Position)
		if best == nil || d < bestDist {
			best = t
			bestDist = d
		}
	}
	return best
}
