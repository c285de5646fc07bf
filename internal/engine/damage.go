package engine

import (
	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
)

// damageBuilding applies dmg to a building and resolves its fate. Buildings
// whose definition is downgradable (Farms) drop to 1 HP with the downgrade
// flag instead of being destroyed. Destroying the town hall marks the battle
// accordingly.
func damageBuilding(b *battle.Battle, tables *config.Balance, bt *battle.BuildingTarget, dmg float64) {
	if bt.IsDestroyed || dmg <= 0 {
		return
	}
	bt.CurrentHP -= dmg
	if bt.CurrentHP > 0 {
		return
	}
	def := tables.Building(bt.Type)
	if def != nil && def.Downgradable {
		bt.CurrentHP = 1
		bt.WasDowngraded = true
		return
	}
	bt.CurrentHP = 0
	bt.IsDestroyed = true
	if bt.Type == battle.BuildingTownHall {
		b.TownHallDestroyed = true
	}
}

// damageTroop applies dmg to a troop, clamping HP at zero and flipping the
// troop to dead when it runs out.
func damageTroop(t *battle.Troop, dmg float64) {
	if !t.Alive() || dmg <= 0 {
		return
	}
	t.CurrentHP -= dmg
	if t.CurrentHP <= 0 {
		t.CurrentHP = 0
		t.State = battle.TroopDead
	}
}
