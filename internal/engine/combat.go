package engine

import (
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
)

// troopsPass runs targeting, movement and attacks for every living troop in
// deploy order.
func (tc *tickContext) troopsPass() {
	for _, t := range tc.b.Troops {
		if !t.Alive() {
			continue
		}
		tc.troopTick(t)
	}
}

func (tc *tickContext) troopTick(t *battle.Troop) {
	def := tc.tables.Troop(t.Type)
	lvl := def.Level(t.Level)
	if lvl == nil {
		// Missing level data is a soft failure; the troop sits this tick out.
		return
	}

	target := tc.selectTarget(t, def.Preference)
	if target == nil {
		t.TargetID = ""
		return
	}
	t.TargetID = target.ID

	rageDmg, rageSpeed := tc.rageFor(t.ID)
	dist := t.Position.Dist(target.Position)

	if dist <= lvl.AttackRange {
		t.State = battle.TroopAttacking
		interval := time.Duration(tc.tables.Combat.AttackIntervalSeconds * float64(time.Second))
		if !t.LastAttackAt.IsZero() && tc.now.Sub(t.LastAttackAt) < interval {
			return
		}
		t.LastAttackAt = tc.now

		dmg := lvl.DPS * tc.tables.Combat.AttackIntervalSeconds * rageDmg
		if target.Category == battle.CategoryWall && lvl.WallDamageMultiplier > 0 {
			dmg *= lvl.WallDamageMultiplier
		}
		if lvl.SplashRadius > 0 {
			splash := dmg * tc.tables.Combat.SplashFactor
			for _, bt := range tc.b.Buildings {
				if bt == target || bt.IsDestroyed {
					continue
				}
				if bt.Position.Dist(target.Position) <= lvl.SplashRadius {
					damageBuilding(tc.b, tc.tables, bt, splash)
				}
			}
		}
		damageBuilding(tc.b, tc.tables, target, dmg)
		return
	}

	t.State = battle.TroopMoving
	step := lvl.MoveSpeed * rageSpeed * tc.dt
	t.Position = t.Position.StepToward(target.Position, step)
}
